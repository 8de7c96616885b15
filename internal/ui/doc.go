// Package ui provides terminal output components for the regctl CLI.
//
// This package uses Lipgloss to render polished terminal output. Commands
// follow a "run once and exit" pattern: they render their result and
// return without further interaction, except for the confirmation prompt
// guarding destructive operations.
//
// # Components
//
//   - Header: Banner showing the operation, command and store parameters
//   - Table: Aligned NAME/VALUE listing for list and dump
//   - Result: Success/failure/warning boxes with details and hints
//   - ConfirmDestructive: Warning box plus typed confirmation
//
// Example:
//
//	fmt.Println(ui.NewHeader("Store contents", "regctl dump",
//	    ui.Detail{Key: "Backend", Value: "nvram"}).Render())
//
//	table := ui.NewTable()
//	table.Add("app/data_send_period", "300")
//	fmt.Println(table.Render())
//
//	fmt.Println(ui.NewSuccessResult("Parameters saved").
//	    AddDetail("Store", "nvram").
//	    Render())
//
// # Logging Integration
//
// This package expects logging to be controlled via the DEVREG_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
