package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
	"strconv"
)

const settingsPath = "config/settings.csv"

type settings struct {
	WindowWidth       int
	WindowHeight      int
	Fps               int // 0 = use display refresh rate
	Font              string
	FontSize          int
	NoteSpeed         int // pixels per second of fall
	KeyboardHeight    int
	MinPitch          int
	MaxPitch          int
	MidiOutPortNumber int // -1 = no midi output
	MessageDuration   int
	ColorBg           uint32
	ColorStrike       uint32
	ColorWhiteKey     uint32
	ColorBlackKey     uint32
	ColorKeyOutline   uint32
	ColorFg           uint32
}

// default settings used for any key absent from the settings file
func defaultSettings() *settings {
	return &settings{
		WindowWidth:       800,
		WindowHeight:      600,
		FontSize:          14,
		Font:              "assets/RobotoMono-Regular.ttf",
		NoteSpeed:         300,
		KeyboardHeight:    100,
		MinPitch:          48, // C3
		MaxPitch:          84, // C6
		MidiOutPortNumber: -1,
		MessageDuration:   5,
		ColorBg:           0x141419ff,
		ColorStrike:       0x73737fff,
		ColorWhiteKey:     0xf5f5f5ff,
		ColorBlackKey:     0x212121ff,
		ColorKeyOutline:   0x595959ff,
		ColorFg:           0xd9d9d9ff,
	}
}

// load settings from the config file, falling back to defaults for missing
// or malformed records
func loadSettings(warn func(string)) *settings {
	s := defaultSettings()
	if records, err := readCSV(settingsPath); err == nil {
		s.applyRecords(records, warn)
	} else if !os.IsNotExist(err) {
		warn(err.Error())
	}
	return s
}

// apply CSV records of the form key,value via reflection
func (s *settings) applyRecords(records [][]string, warn func(string)) {
	v := reflect.ValueOf(s).Elem()
	for _, rec := range records {
		success := false
		if len(rec) == 2 {
			if field := v.FieldByName(rec[0]); field.IsValid() {
				switch field.Kind() {
				case reflect.Uint32:
					if len(rec[1]) > 1 {
						if i, err := strconv.ParseUint(rec[1][1:], 16, 32); err == nil {
							field.SetUint(uint64(i))
							success = true
						}
					}
				case reflect.Int:
					if i, err := strconv.Atoi(rec[1]); err == nil {
						field.SetInt(int64(i))
						success = true
					}
				case reflect.String:
					field.SetString(rec[1])
					success = true
				}
			}
		}
		if !success {
			warn(fmt.Sprintf("bad settings record: %v", rec))
		}
	}
}

// read records from a CSV file
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.Comment = '#'
	return r.ReadAll()
}
