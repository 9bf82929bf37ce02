package protocol

import "testing"

func TestParseCredentialsDemoRoundTrip(t *testing.T) {
	envelope := `42["auth",{"session":"abc","isDemo":1,"uid":123,"platform":1}]` + "\t"
	creds, err := ParseCredentials(envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !creds.IsDemo() {
		t.Fatalf("expected demo credentials")
	}
	if creds.Demo.Session != "abc" || creds.Demo.UID != 123 || creds.Demo.Platform != 1 {
		t.Fatalf("unexpected demo fields: %+v", creds.Demo)
	}

	out, err := creds.Envelope()
	if err != nil {
		t.Fatalf("unexpected error re-encoding: %v", err)
	}
	reparsed, err := ParseCredentials(out)
	if err != nil {
		t.Fatalf("unexpected error re-parsing: %v", err)
	}
	if *reparsed.Demo != *creds.Demo {
		t.Fatalf("round trip mismatch: %+v vs %+v", reparsed.Demo, creds.Demo)
	}
}

func TestParseCredentialsRealEchoesRawVerbatim(t *testing.T) {
	envelope := `42["auth",{"session":"real-session","isDemo":0,"uid":999,"platform":2}]` + "\t"
	creds, err := ParseCredentials(envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.IsDemo() {
		t.Fatalf("expected real credentials")
	}
	out, err := creds.Envelope()
	if err != nil {
		t.Fatalf("unexpected error re-encoding: %v", err)
	}
	if out != envelope {
		t.Fatalf("expected byte-identical echo, got %q want %q", out, envelope)
	}
}

func TestParseCredentialsMalformed(t *testing.T) {
	if _, err := ParseCredentials(`not an envelope`); err == nil {
		t.Fatalf("expected SsidParsingError for malformed envelope")
	}
}

func TestParseCredentialsMissingTrailingTab(t *testing.T) {
	envelope := `42["auth",{"session":"abc","isDemo":1,"uid":123,"platform":1}]`
	creds, err := ParseCredentials(envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !creds.IsDemo() {
		t.Fatalf("expected demo credentials")
	}
}
