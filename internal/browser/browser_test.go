package browser

import (
	"errors"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	startError  error
	calls       int
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.calls++
	m.lastCommand = name
	m.lastArgs = args
	return m.startError
}

func TestOpenWithCommander_Platforms(t *testing.T) {
	const page = "http://localhost:8081/relays"

	tests := []struct {
		goos    string
		command string
		args    []string
	}{
		{"linux", "xdg-open", []string{page}},
		{"freebsd", "xdg-open", []string{page}},
		{"darwin", "open", []string{page}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", page}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(page, mock, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, mock.lastCommand)
			}
			if len(mock.lastArgs) != len(tt.args) {
				t.Fatalf("expected args %v, got %v", tt.args, mock.lastArgs)
			}
			for i := range tt.args {
				if mock.lastArgs[i] != tt.args[i] {
					t.Errorf("expected args %v, got %v", tt.args, mock.lastArgs)
				}
			}
		})
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander("http://localhost:8081/", mock, "plan9")
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
	if mock.calls != 0 {
		t.Error("expected no command to run")
	}
}

func TestOpenWithCommander_RejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "localhost:8081", "::bad"} {
		t.Run(raw, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(raw, mock, "linux"); err == nil {
				t.Errorf("expected %q to be rejected", raw)
			}
			if mock.calls != 0 {
				t.Error("expected no command to run")
			}
		})
	}
}

func TestOpenWithCommander_StartError(t *testing.T) {
	mock := &mockCommander{startError: errors.New("no display")}

	if err := OpenWithCommander("https://club.example.org/", mock, "linux"); err == nil {
		t.Error("expected start error to be returned")
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		addr, path, want string
	}{
		{":8081", "/", "http://localhost:8081/"},
		{":8081", "/relays", "http://localhost:8081/relays"},
		{"0.0.0.0:9000", "/rankings", "http://0.0.0.0:9000/rankings"},
	}
	for _, tt := range tests {
		if got := PageURL(tt.addr, tt.path); got != tt.want {
			t.Errorf("PageURL(%q, %q) = %q, want %q", tt.addr, tt.path, got, tt.want)
		}
	}
}
