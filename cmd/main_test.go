package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Declyn50s/Traine-Savates/pkg/config"
)

func TestHashPasswordCommand(t *testing.T) {
	t.Parallel()

	cmd := hashPasswordCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("course-2025\n"))
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("course-2025")); err != nil {
		t.Fatalf("printed hash does not match: %v", err)
	}

	cmd = hashPasswordCommand()
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err == nil {
		t.Fatal("empty password accepted")
	}
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{"bolt", "sqlite"} {
		db, err := openStore(config.StoreConfig{Driver: driver, Path: filepath.Join(t.TempDir(), "content.db")})
		if err != nil {
			t.Fatalf("openStore(%s): %v", driver, err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("Close(%s): %v", driver, err)
		}
	}
	if _, err := openStore(config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
