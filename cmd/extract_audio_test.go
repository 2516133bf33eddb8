package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"audio-from-video/application/extraction"
	"audio-from-video/domain/audio"
	"audio-from-video/infrastructure/ffmpeg"
)

type stubExtractor struct {
	result *audio.Result
	err    error
	got    extraction.Input
}

func (s *stubExtractor) Extract(ctx context.Context, input extraction.Input) (*audio.Result, error) {
	s.got = input
	return s.result, s.err
}

func TestRunExtractAudioWithDependencies(t *testing.T) {
	stub := &stubExtractor{result: &audio.Result{Path: "/out/a.m4a", FileSize: 2048, MimeType: audio.MimeType}}
	var out bytes.Buffer

	input := extraction.Input{Path: "/videos/a.mp4", OutputPath: "/out/a.m4a"}
	if err := RunExtractAudioWithDependencies(context.Background(), stub, input, false, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.got != input {
		t.Errorf("extractor got %+v, want %+v", stub.got, input)
	}
	if !strings.Contains(out.String(), "Successfully created: /out/a.m4a (2048 bytes, audio/mp4)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunExtractAudioWithDependencies_JSON(t *testing.T) {
	tests := []struct {
		name     string
		stub     *stubExtractor
		wantErr  bool
		wantKeys map[string]string
	}{
		{
			name:     "result",
			stub:     &stubExtractor{result: &audio.Result{Path: "/out/a.m4a", FileSize: 1, MimeType: audio.MimeType}},
			wantKeys: map[string]string{"path": "/out/a.m4a", "mimeType": "audio/mp4"},
		},
		{
			name:     "error",
			stub:     &stubExtractor{err: audio.ErrNoAudioTrack},
			wantErr:  true,
			wantKeys: map[string]string{"code": "NoAudioTrack", "error": "no audio track found in the video"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := RunExtractAudioWithDependencies(context.Background(), tt.stub, extraction.Input{Path: "/videos/a.mp4"}, true, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}

			var decoded map[string]interface{}
			if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out.String())
			}
			for k, v := range tt.wantKeys {
				if decoded[k] != v {
					t.Errorf("%s = %v, want %q", k, decoded[k], v)
				}
			}
		})
	}
}

func TestUnavailableExtractor(t *testing.T) {
	u := &unavailableExtractor{stub: ffmpeg.NewUnavailable("ffmpeg not found")}

	_, err := u.Extract(context.Background(), extraction.Input{Path: "/does/not/matter.mp4"})
	if !errors.Is(err, audio.ErrUnimplemented) {
		t.Fatalf("error = %v, want ErrUnimplemented", err)
	}
	if !strings.Contains(err.Error(), "ffmpeg not found") {
		t.Errorf("error %q should carry the reason", err)
	}
}
