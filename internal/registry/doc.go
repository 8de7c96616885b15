// Package registry provides the runtime configuration registry for devreg.
//
// Configuration groups register a Handler under a top-level name. Parameters
// are addressed by slash-delimited names whose first segment selects the
// group, e.g. "app/watering_level_plant_1". The registry never holds typed
// values: handlers own their parameters and exchange them as short strings,
// using the codec helpers in this package to convert.
//
// # Handlers
//
// A handler implements Handler (Name, Set) and optionally Getter, Committer
// and Exporter:
//
//	reg := registry.New()
//	if err := reg.Register(appHandler); err != nil {
//	    return err
//	}
//
//	if err := reg.SetValue("app/data_send_period", "300"); err != nil {
//	    return err
//	}
//	v, ok := reg.GetValue("app/data_send_period", registry.MaxValLen)
//
// Lookup is a linear scan in registration order; the first handler with a
// matching name wins.
//
// # Codec
//
// ValueFromString, StringFromValue, BytesFromString and StringFromBytes
// convert between a typed Value and its wire form: decimal integers, 0/1
// for booleans, base64 for byte blobs and verbatim strings. Range and
// length checks surface as overflow errors.
//
// # Persistence
//
// Stores implement Store (Load, Save) and optionally SaveStarter/SaveEnder.
// Any number of stores can be load sources; one store is the save
// destination:
//
//	reg.RegisterSource(store)
//	reg.RegisterDestination(store)
//
//	if err := reg.Load(); err != nil {
//	    // records that failed to apply; the others were applied
//	}
//	if err := reg.Save(); err != nil {
//	    return err
//	}
//
// SaveOne reads the destination first and skips the write when the same
// value is already stored under the same name.
//
// # Errors
//
// Every failure is an *Error carrying an ErrorKind. Use errors.Is with the
// sentinels (ErrNotFound, ErrInvalidFormat, ErrOverflow,
// ErrCapacityExhausted, ErrHandler) or the IsXxx predicates.
package registry
