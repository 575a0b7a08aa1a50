package models

import "testing"

func TestStorageKeyForFile(t *testing.T) {
	key := StorageKeyForFile("f1")
	if key != "uploads/f1" {
		t.Fatalf("unexpected key: %q", key)
	}
}

func TestFileIDFromStorageKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"valid", "uploads/f1", "f1", false},
		{"valid uuid", "uploads/a1b2c3d4-e5f6-7890-abcd-ef1234567890", "a1b2c3d4-e5f6-7890-abcd-ef1234567890", false},
		{"outside prefix", "thumbnails/f1", "", true},
		{"prefix only", "uploads/", "", true},
		{"nested segment", "uploads/f1/part1", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FileIDFromStorageKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for key %q", tc.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStatus_Predecessor(t *testing.T) {
	prev, ok := StatusQueued.Predecessor()
	if !ok || prev != StatusPendingUpload {
		t.Fatalf("QUEUED must be reachable from PENDING_UPLOAD, got %q ok=%v", prev, ok)
	}

	if _, ok := StatusPendingUpload.Predecessor(); ok {
		t.Fatalf("PENDING_UPLOAD is the initial state, not a transition target")
	}

	if _, ok := Status("DELETED").Predecessor(); ok {
		t.Fatalf("unknown state must not be a transition target")
	}
}

func TestStatus_Valid(t *testing.T) {
	if !StatusPendingUpload.Valid() || !StatusQueued.Valid() {
		t.Fatalf("known states must be valid")
	}
	if Status("").Valid() || Status("queued").Valid() {
		t.Fatalf("unknown states must be invalid")
	}
}
