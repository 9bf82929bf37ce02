package session

import (
	"context"
	"errors"
	"testing"

	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
)

func TestCredentialKeeperCurrentReflectsSeed(t *testing.T) {
	creds, err := protocol.ParseCredentials(`42["auth",{"session":"abc","isDemo":1,"uid":1,"platform":1}]` + "\t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keeper := NewCredentialKeeper(creds)

	if keeper.Current().Demo.Session != "abc" {
		t.Fatalf("expected Current to return the seeded credentials")
	}
}

func TestCredentialKeeperRevalidateReplacesCurrent(t *testing.T) {
	demo, _ := protocol.ParseCredentials(`42["auth",{"session":"old","isDemo":1,"uid":1,"platform":1}]` + "\t")
	keeper := NewCredentialKeeper(demo)

	refreshed, _ := protocol.ParseCredentials(`42["auth",{"session":"new","isDemo":1,"uid":1,"platform":1}]` + "\t")
	err := keeper.Revalidate(context.Background(), func(ctx context.Context, current protocol.Credentials) (protocol.Credentials, error) {
		if current.Demo.Session != "old" {
			t.Fatalf("expected to be handed the current credentials")
		}
		return refreshed, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keeper.Current().Demo.Session != "new" {
		t.Fatalf("expected revalidation to replace current credentials")
	}
}

func TestCredentialKeeperRevalidateErrorLeavesCurrentUnchanged(t *testing.T) {
	demo, _ := protocol.ParseCredentials(`42["auth",{"session":"stable","isDemo":1,"uid":1,"platform":1}]` + "\t")
	keeper := NewCredentialKeeper(demo)

	err := keeper.Revalidate(context.Background(), func(ctx context.Context, current protocol.Credentials) (protocol.Credentials, error) {
		return protocol.Credentials{}, errors.New("revalidation failed")
	})
	if err == nil {
		t.Fatalf("expected revalidation error to propagate")
	}
	if keeper.Current().Demo.Session != "stable" {
		t.Fatalf("expected current credentials to be left unchanged on error")
	}
}
