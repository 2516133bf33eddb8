package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestManager(t *testing.T) (*ConfigManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	return NewConfigManager(Default(), path), path
}

func TestConfigManager_GetSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr error
	}{
		{key: "ffmpeg.ffmpeg_path", value: "/usr/local/bin/ffmpeg", want: "/usr/local/bin/ffmpeg"},
		{key: "FFMPEG.Timeout", value: "10m", want: "10m0s"},
		{key: "source.max_download_attempts", value: "5", want: "5"},
		{key: "ffmpeg.passthrough_codecs", value: "AAC, alac,,mp3", want: "aac,alac,mp3"},
		{key: "ffmpeg.timeout", value: "soon", wantErr: ErrInvalidValue},
		{key: "source.max_download_attempts", value: "0", wantErr: ErrInvalidValue},
		{key: "logging.format", value: "xml", wantErr: ErrInvalidValue},
		{key: "email.from", value: "x", wantErr: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			m, path := newTestManager(t)

			err := m.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Set() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := m.Get(tt.key)
			if err != nil || got != tt.want {
				t.Errorf("Get() = %q, %v, want %q", got, err, tt.want)
			}

			saved, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			reloaded := NewConfigManager(saved, path)
			if v, _ := reloaded.Get(tt.key); v != tt.want {
				t.Errorf("saved value = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestConfigManager_List(t *testing.T) {
	m, _ := newTestManager(t)

	settings := m.List()
	if len(settings) != len(Keys()) {
		t.Fatalf("List() returned %d settings, want %d", len(settings), len(Keys()))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Errorf("List() not sorted at %s", settings[i].Key)
		}
	}

	for _, s := range settings {
		if s.Key == "ffmpeg.timeout" && s.Value != (5*time.Minute).String() {
			t.Errorf("ffmpeg.timeout = %q", s.Value)
		}
	}
}

func TestConfigManager_PassthroughCodecs(t *testing.T) {
	m, path := newTestManager(t)

	if err := m.AddPassthroughCodec(" MP3 "); err != nil {
		t.Fatalf("AddPassthroughCodec() error = %v", err)
	}
	if err := m.AddPassthroughCodec("aac"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate add error = %v, want ErrDuplicateKey", err)
	}
	if err := m.RemovePassthroughCodec("alac"); err != nil {
		t.Fatalf("RemovePassthroughCodec() error = %v", err)
	}
	if err := m.RemovePassthroughCodec("opus"); !errors.Is(err, ErrCodecNotFound) {
		t.Errorf("remove missing error = %v, want ErrCodecNotFound", err)
	}

	saved, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"aac", "mp3"}; !reflect.DeepEqual(saved.FFmpeg.PassthroughCodecs, want) {
		t.Errorf("saved codecs = %v, want %v", saved.FFmpeg.PassthroughCodecs, want)
	}
}
