package httputil

import "testing"

func TestValidateURL(t *testing.T) {
	for _, tc := range []struct {
		url string
		ok  bool
	}{
		{"http://bridge.local:9000", true},
		{"https://bridge.local", true},
		{"", false},
		{"ftp://bridge.local", false},
		{"http://", false},
	} {
		err := ValidateURL(tc.url)
		if (err == nil) != tc.ok {
			t.Errorf("ValidateURL(%q) = %v, want ok=%v", tc.url, err, tc.ok)
		}
	}
}

func TestWebsocketURL(t *testing.T) {
	if got := WebsocketURL("http://bridge.local:9000/subscribe"); got != "ws://bridge.local:9000/subscribe" {
		t.Errorf("got %q", got)
	}
	if got := WebsocketURL("https://bridge.local"); got != "wss://bridge.local" {
		t.Errorf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate([]byte("héllo world"), 5); got != "héllo..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate([]byte("short"), 10); got != "short" {
		t.Errorf("got %q", got)
	}
}
