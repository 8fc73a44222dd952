package playback

import (
	"errors"
	"testing"
)

// renderSize is a 4 MiB render, large enough for players to fetch it in chunks.
const renderSize = 4 << 20

func TestParseRange_RenderPlayback(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		wantStart    int64
		wantEnd      int64
		contentRange string
	}{
		{"initial open", "bytes=0-", 0, renderSize - 1, "bytes 0-4194303/4194304"},
		{"ftyp box", "bytes=0-7", 0, 7, "bytes 0-7/4194304"},
		{"second chunk", "bytes=1048576-2097151", 1048576, 2097151, "bytes 1048576-2097151/4194304"},
		{"moov at tail", "bytes=-8192", renderSize - 8192, renderSize - 1, "bytes 4186112-4194303/4194304"},
		{"seek near end", "bytes=4194000-", 4194000, renderSize - 1, "bytes 4194000-4194303/4194304"},
		{"last byte", "bytes=4194303-", renderSize - 1, renderSize - 1, "bytes 4194303-4194303/4194304"},
		{"chunk past end clamped", "bytes=3145728-9999999", 3145728, renderSize - 1, "bytes 3145728-4194303/4194304"},
		{"multi range keeps first", "bytes=0-99, 200-299", 0, 99, "bytes 0-99/4194304"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, renderSize)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.header, err)
			}
			if got == nil {
				t.Fatalf("ParseRange(%q) = nil", tt.header)
			}
			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("ParseRange(%q) = {%d, %d}, want {%d, %d}", tt.header, got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if cr := got.ContentRange(renderSize); cr != tt.contentRange {
				t.Errorf("ContentRange() = %s, want %s", cr, tt.contentRange)
			}
			if n := got.ContentLength(); n != tt.wantEnd-tt.wantStart+1 {
				t.Errorf("ContentLength() = %d, want %d", n, tt.wantEnd-tt.wantStart+1)
			}
		})
	}
}

func TestParseRange_NoHeaderServesWholeRender(t *testing.T) {
	got, err := ParseRange("", renderSize)
	if err != nil || got != nil {
		t.Errorf("ParseRange(\"\") = %v, %v; want nil, nil", got, err)
	}
}

func TestParseRange_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		size    int64
		wantErr error
	}{
		{"seek past end", "bytes=4194304-", renderSize, ErrUnsatisfiable},
		{"chunk past end", "bytes=5000000-6000000", renderSize, ErrUnsatisfiable},
		{"reversed", "bytes=2048-1024", renderSize, ErrUnsatisfiable},
		{"tail of empty render", "bytes=-10", 0, ErrUnsatisfiable},
		{"open range on empty render", "bytes=0-", 0, ErrUnsatisfiable},
		{"not bytes", "frames=0-30", renderSize, ErrInvalidRange},
		{"garbage", "invalid", renderSize, ErrInvalidRange},
		{"missing dash", "bytes=100", renderSize, ErrInvalidRange},
		{"bad start", "bytes=abc-100", renderSize, ErrInvalidRange},
		{"bad end", "bytes=0-abc", renderSize, ErrInvalidRange},
		{"zero-length tail", "bytes=-0", renderSize, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseRange(%q) = %v, %v; want error %v", tt.header, got, err, tt.wantErr)
			}
		})
	}
}
