package ipmatch

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

// sampleClientIPs maps raw candidate values to the address resolved from them.
var sampleClientIPs = []struct {
	raw  string
	want string
}{
	{"127.0.0.1", "127.0.0.1"},
	{"192.168.178.32", "192.168.178.32"},
	{"10.194.95.79", "10.194.95.79"},
	{"75.184.124.93, 10.194.95.79", "10.194.95.79"},
	{"10.194.95.79, 75.184.124.93", "75.184.124.93"},
	{"0.0.0.0", "0.0.0.0"},
	{"ff05::1", "ff05::1"},
	{"fake", ""},
}

var sampleSourceNames = []string{
	"HTTP_X_FORWARDED_FOR",
	"HTTP_CLIENT_IP",
	"REMOTE_ADDR",
}

// candidatesFromServer converts a CGI-style variable map to candidates.
func candidatesFromServer(server map[string]string) []Candidate {
	candidates := make([]Candidate, 0, len(server))
	for name, value := range server {
		candidates = append(candidates, Candidate{Source: name, Value: value})
	}
	return candidates
}

func noEnv(string) (string, bool) { return "", false }

func TestResolve_WithOverride(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	for _, source := range sampleSourceNames {
		for _, sample := range sampleClientIPs {
			t.Run(source+"/"+sample.raw, func(t *testing.T) {
				candidates := candidatesFromServer(map[string]string{source: sample.raw})

				if got := resolver.Resolve(context.Background(), candidates, true); got != sample.want {
					t.Errorf("Resolve() = %q, want %q", got, sample.want)
				}
			})
		}
	}
}

func TestResolve_WithoutOverride(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	for _, source := range sampleSourceNames {
		for _, sample := range sampleClientIPs {
			t.Run(source+"/"+sample.raw, func(t *testing.T) {
				server := map[string]string{source: sample.raw}
				server["REMOTE_ADDR"] = "80.80.80.80"

				if got := resolver.Resolve(context.Background(), candidatesFromServer(server), false); got != "80.80.80.80" {
					t.Errorf("Resolve() = %q, want 80.80.80.80", got)
				}
			})
		}
	}
}

func TestResolve_OverridePrecedence(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	tests := []struct {
		name       string
		candidates []Candidate
		want       string
	}{
		{
			name: "forwarded for beats client ip and remote addr",
			candidates: []Candidate{
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
				{Source: SourceClientIP, Value: "203.0.113.1"},
				{Source: SourceXForwardedFor, Value: "75.184.124.93"},
			},
			want: "75.184.124.93",
		},
		{
			name: "client ip beats remote addr",
			candidates: []Candidate{
				{Source: SourceClientIP, Value: "203.0.113.1"},
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
			},
			want: "203.0.113.1",
		},
		{
			name: "remote addr alone",
			candidates: []Candidate{
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
			},
			want: "10.0.0.5",
		},
		{
			name: "present empty header wins",
			candidates: []Candidate{
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
				{Source: SourceClientIP, Value: ""},
			},
			want: "",
		},
		{
			name: "invalid winner does not fall back",
			candidates: []Candidate{
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
				{Source: SourceXForwardedFor, Value: "unknown"},
			},
			want: "",
		},
		{
			name: "first candidate of a source wins",
			candidates: []Candidate{
				{Source: SourceXForwardedFor, Value: "1.1.1.1"},
				{Source: "X-Forwarded-For", Value: "2.2.2.2"},
			},
			want: "1.1.1.1",
		},
		{
			name: "unknown sources ignored",
			candidates: []Candidate{
				{Source: SourceRemoteAddr, Value: "10.0.0.5"},
				{Source: "x_real_ip", Value: "9.9.9.9"},
			},
			want: "10.0.0.5",
		},
		{
			name:       "no candidates",
			candidates: nil,
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.Resolve(context.Background(), tt.candidates, true); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_SourceAliases(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	tests := []struct {
		source        string
		allowOverride bool
	}{
		{"direct", false},
		{"Remote-Addr", false},
		{"REMOTE_ADDR", false},
		{"HTTP_CLIENT_IP", true},
		{"Client-Ip", true},
		{"forwarded-for", true},
		{"HTTP_X_FORWARDED_FOR", true},
		{"X-Forwarded-For", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), []Candidate{{Source: tt.source, Value: "198.51.100.7"}}, tt.allowOverride)
			if got != "198.51.100.7" {
				t.Errorf("Resolve() = %q, want 198.51.100.7", got)
			}
		})
	}
}

func TestResolve_EnvFallback(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == RemoteAddrEnv {
			return "192.0.2.44", true
		}
		return "", false
	}

	resolver, err := NewResolver(WithEnvLookup(lookup))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	ctx := context.Background()

	if got := resolver.Resolve(ctx, nil, false); got != "192.0.2.44" {
		t.Errorf("no candidates: Resolve() = %q, want env value", got)
	}

	withDirect := []Candidate{{Source: SourceRemoteAddr, Value: "10.0.0.1"}}
	if got := resolver.Resolve(ctx, withDirect, false); got != "10.0.0.1" {
		t.Errorf("direct candidate: Resolve() = %q, want 10.0.0.1", got)
	}

	if got := resolver.Resolve(ctx, nil, true); got != "" {
		t.Errorf("override mode: Resolve() = %q, want empty (env not consulted)", got)
	}

	disabled, err := NewResolver(WithEnvLookup(lookup), WithoutEnvFallback())
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if got := disabled.Resolve(ctx, nil, false); got != "" {
		t.Errorf("fallback disabled: Resolve() = %q, want empty", got)
	}
}

func TestResolveClientAddress_DefaultEnvironment(t *testing.T) {
	t.Setenv(RemoteAddrEnv, "203.0.113.50")

	if got := ResolveClientAddress(nil, false); got != "203.0.113.50" {
		t.Fatalf("ResolveClientAddress() = %q, want 203.0.113.50", got)
	}

	got := ResolveClientAddress([]Candidate{
		{Source: SourceRemoteAddr, Value: "10.0.0.5"},
		{Source: SourceXForwardedFor, Value: "75.184.124.93, 10.194.95.79"},
	}, true)
	if got != "10.194.95.79" {
		t.Fatalf("ResolveClientAddress(override) = %q, want 10.194.95.79", got)
	}
}

func TestResolve_LongChainUnlimitedByDefault(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "many entries",
			value: strings.Repeat("10.0.0.1, ", 500) + "10.0.0.2",
			want:  "10.0.0.2",
		},
		{
			name:  "trailing empty segments",
			value: "1.2.3.4" + strings.Repeat(",", 200),
			want:  "1.2.3.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), []Candidate{{Source: SourceXForwardedFor, Value: tt.value}}, true)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_ChainLengthLimit(t *testing.T) {
	const limit = 10

	resolver, err := NewResolver(WithEnvLookup(noEnv), WithMaxChainLength(limit))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	atLimit := strings.TrimSuffix(strings.Repeat("10.0.0.1, ", limit), ", ")

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "at limit", value: atLimit, want: "10.0.0.1"},
		{name: "over limit", value: atLimit + ", 10.0.0.2", want: ""},
		{name: "empty segments not counted", value: atLimit + strings.Repeat(",", limit), want: "10.0.0.1"},
		{name: "invalid entries counted", value: atLimit + ", junk", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), []Candidate{{Source: SourceXForwardedFor, Value: tt.value}}, true)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_ChainEntriesAsWritten(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	got := resolver.Resolve(context.Background(), []Candidate{
		{Source: SourceXForwardedFor, Value: " 2001:0db8::0001 ,  "},
	}, true)
	if got != "2001:0db8::0001" {
		t.Fatalf("Resolve() = %q, want trimmed token as written", got)
	}
}

func TestResolveAddr(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	addr, ok := resolver.ResolveAddr(context.Background(), []Candidate{{Source: SourceRemoteAddr, Value: "::1"}}, false)
	if !ok || addr.String() != "::1" {
		t.Fatalf("ResolveAddr() = %v, %v; want ::1, true", addr, ok)
	}

	if _, ok := resolver.ResolveAddr(context.Background(), nil, false); ok {
		t.Fatal("ResolveAddr(no candidates) ok = true")
	}
}

func TestResolveRequest(t *testing.T) {
	resolver, err := NewResolver(WithEnvLookup(noEnv))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	req := &http.Request{
		RemoteAddr: "[2001:db8::7]:51234",
		Header:     make(http.Header),
	}
	req.Header.Add("X-Forwarded-For", "75.184.124.93")
	req.Header.Add("X-Forwarded-For", "10.194.95.79")

	if got := resolver.ResolveRequest(req, false); got != "2001:db8::7" {
		t.Errorf("ResolveRequest(no override) = %q, want 2001:db8::7", got)
	}
	if got := resolver.ResolveRequest(req, true); got != "10.194.95.79" {
		t.Errorf("ResolveRequest(override) = %q, want 10.194.95.79", got)
	}
	if got := resolver.ResolveRequest(nil, true); got != "" {
		t.Errorf("ResolveRequest(nil) = %q, want empty", got)
	}
}

func TestResolveRequest_CustomHeaders(t *testing.T) {
	resolver, err := NewResolver(
		WithEnvLookup(noEnv),
		WithClientIPHeader("True-Client-IP"),
		WithForwardedForHeader("X-Chain"),
	)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	req := &http.Request{RemoteAddr: "10.0.0.1:80", Header: make(http.Header)}
	req.Header.Set("Client-Ip", "1.1.1.1")
	req.Header.Set("True-Client-IP", "2.2.2.2")

	if got := resolver.ResolveRequest(req, true); got != "2.2.2.2" {
		t.Errorf("ResolveRequest() = %q, want 2.2.2.2", got)
	}

	req.Header.Set("X-Chain", "3.3.3.3")
	if got := resolver.ResolveRequest(req, true); got != "3.3.3.3" {
		t.Errorf("ResolveRequest() = %q, want 3.3.3.3", got)
	}
}

func TestNormalizeSourceName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"X-Forwarded-For", "x_forwarded_for"},
		{" HTTP_CLIENT_IP ", "http_client_ip"},
		{"remote_addr", "remote_addr"},
	}

	for _, tt := range tests {
		if got := NormalizeSourceName(tt.input); got != tt.want {
			t.Errorf("NormalizeSourceName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
