package main

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/group"
	"github.com/muurk/devreg/internal/logging"
)

// LoRaWAN identifier lengths in hex digits
const (
	euiHexLen = 16
	keyHexLen = 32
)

// sensebox holds the parameters of the sensebox plant watering node: the
// "app" group with watering thresholds and the send period, and the
// "lora" group with the OTAA identifiers.
type sensebox struct {
	wateringLevelPlant1 int16
	wateringLevelPlant2 int16
	dataSendPeriod      int16

	devEUI string
	appEUI string
	appKey string
}

func newSensebox() *sensebox {
	return &sensebox{
		dataSendPeriod: 60,
		devEUI:         "00FA3F26B4128C7D",
		appEUI:         "70B3D57ED001193D",
		appKey:         "90579278EAA9870F1380B39E4F40FC7A",
	}
}

func (s *sensebox) groups() []*group.Group {
	app := group.New("app", group.WithCommit(s.commitApp)).Add(
		group.Int("watering_level_plant_1", &s.wateringLevelPlant1),
		group.Int("watering_level_plant_2", &s.wateringLevelPlant2),
		group.Int("data_send_period", &s.dataSendPeriod),
	)

	lora := group.New("lora", group.WithCommit(s.commitLoRa)).Add(
		group.String("str_DEVEUI", &s.devEUI, euiHexLen+1),
		group.String("str_APPEUI", &s.appEUI, euiHexLen+1),
		group.String("str_APPKEY", &s.appKey, keyHexLen+1),
	)

	return []*group.Group{app, lora}
}

// commitApp checks the application settings before they take effect.
func (s *sensebox) commitApp() error {
	if s.dataSendPeriod <= 0 {
		return fmt.Errorf("data_send_period must be positive, got %d", s.dataSendPeriod)
	}
	for i, level := range []int16{s.wateringLevelPlant1, s.wateringLevelPlant2} {
		if level < 0 {
			return fmt.Errorf("watering_level_plant_%d must not be negative, got %d", i+1, level)
		}
	}
	logging.Info("Applied app settings",
		zap.Int16("data_send_period", s.dataSendPeriod),
		zap.Int16("watering_level_plant_1", s.wateringLevelPlant1),
		zap.Int16("watering_level_plant_2", s.wateringLevelPlant2),
	)
	return nil
}

// commitLoRa checks that the OTAA identifiers decode before a join.
func (s *sensebox) commitLoRa() error {
	ids := []struct {
		name  string
		value string
		size  int
	}{
		{"str_DEVEUI", s.devEUI, euiHexLen},
		{"str_APPEUI", s.appEUI, euiHexLen},
		{"str_APPKEY", s.appKey, keyHexLen},
	}
	for _, id := range ids {
		if len(id.value) != id.size {
			return fmt.Errorf("%s must be %d hex digits, got %d", id.name, id.size, len(id.value))
		}
		if _, err := hex.DecodeString(id.value); err != nil {
			return fmt.Errorf("%s is not hex: %w", id.name, err)
		}
	}
	logging.Info("Applied LoRaWAN identifiers", zap.String("dev_eui", s.devEUI))
	return nil
}
