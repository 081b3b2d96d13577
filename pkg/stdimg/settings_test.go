package stdimg

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSettingsAccessors(t *testing.T) {
	s := EditSettings{}
	s.SetFloat(KeyBrightness, 110)
	s.SetBool(KeySepia, true)
	s[KeyContrast] = "abc"

	v, ok, err := s.Float(KeyBrightness)
	if err != nil || !ok || v != 110 {
		t.Fatalf("Float(brightness) = %v %v %v", v, ok, err)
	}
	if _, ok, _ := s.Float(KeyHue); ok {
		t.Fatalf("absent key reported present")
	}
	if _, _, err := s.Float(KeyContrast); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("bad number: got %v", err)
	}
	if on, err := s.Bool(KeySepia); err != nil || !on {
		t.Fatalf("Bool(sepia) = %v %v", on, err)
	}
	if on, _ := s.Bool(KeyGrayscale); on {
		t.Fatalf("absent bool should be false")
	}
}

func TestSettingsEntries(t *testing.T) {
	s := EditSettings{
		KeySepia:      "true",
		KeyGrayscale:  "false",
		KeySaturation: "80",
		Key("zoom"):   "2",
	}
	got := s.Entries()
	want := []Entry{
		{KeySaturation, "80"},
		{KeyGrayscale, "No"},
		{KeySepia, "Yes"},
		{Key("zoom"), "2"},
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSettingsJSON(t *testing.T) {
	s := EditSettings{KeySepia: "true", KeySaturation: "80"}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"saturation":"80","sepia":true}` {
		t.Fatalf("json = %s", data)
	}

	var back EditSettings
	if err := json.Unmarshal([]byte(`{"brightness":110,"grayscale":true,"hue":"-10"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[KeyBrightness] != "110" || back[KeyGrayscale] != "true" || back[KeyHue] != "-10" {
		t.Fatalf("decoded = %v", back)
	}
	if err := json.Unmarshal([]byte(`{"blur":[1]}`), &back); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("array value: got %v", err)
	}
}
