package safety

import "testing"

func TestIsSafeURLRestrictedAddresses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "loopback ipv4", in: "http://127.0.0.1/", want: false},
		{name: "loopback range", in: "http://127.8.9.10/x", want: false},
		{name: "private ten", in: "https://10.0.0.5/admin", want: false},
		{name: "private one seventy two", in: "https://172.16.4.1/", want: false},
		{name: "private one ninety two", in: "http://192.168.1.1/router", want: false},
		{name: "link local metadata ip", in: "http://169.254.169.254/latest/meta-data/", want: false},
		{name: "unspecified", in: "http://0.0.0.0/", want: false},
		{name: "cgnat", in: "http://100.64.1.2/", want: false},
		{name: "reserved future use", in: "http://240.1.2.3/", want: false},
		{name: "ipv6 loopback", in: "http://[::1]/", want: false},
		{name: "ipv6 unique local", in: "http://[fd00::1]/", want: false},
		{name: "localhost hostname", in: "https://localhost:8080/", want: false},
		{name: "localhost case insensitive", in: "http://LocalHost/", want: false},
		{name: "cloud metadata hostname", in: "http://metadata.google.internal/computeMetadata/v1/", want: false},
		{name: "public ipv4", in: "https://93.184.216.34/", want: true},
		{name: "public domain", in: "https://example.com/page", want: true},
		{name: "domain resolving private is not checked", in: "https://internal.corp.example/", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSafeURL(tt.in); got != tt.want {
				t.Fatalf("IsSafeURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsSafeURLFailsClosed(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", ":///bad", "not a url at all", "/etc/passwd", "mailto:user@example.com"} {
		if IsSafeURL(in) {
			t.Fatalf("IsSafeURL(%q) = true, want false for unparseable or hostless input", in)
		}
	}
}
