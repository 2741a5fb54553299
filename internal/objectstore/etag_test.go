package objectstore_test

import (
	"testing"

	"github.com/calvinalkan/s3dedup/internal/objectstore"
)

func Test_IsMultipartETag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		etag string
		want bool
	}{
		{`"d41d8cd98f00b204e9800998ecf8427e-3"`, true},
		{"d41d8cd98f00b204e9800998ecf8427e-12", true},
		{`"d41d8cd98f00b204e9800998ecf8427e"`, false},
		{"d41d8cd98f00b204e9800998ecf8427e", false},
		{"", false},
		{"abc-", false},
		{"abc-xyz", false},
	}

	for _, tt := range tests {
		got := objectstore.IsMultipartETag(tt.etag)
		if got != tt.want {
			t.Errorf("IsMultipartETag(%q) = %v, want %v", tt.etag, got, tt.want)
		}
	}
}
