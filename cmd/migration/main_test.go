package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStepsArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "defaults to one", want: 1},
		{name: "explicit", args: []string{" 3 "}, want: 3},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "not a number", args: []string{"all"}, wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := stepsArg(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("stepsArg(%v) error = %v, wantErr %v", tc.args, err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("stepsArg(%v) = %d, want %d", tc.args, got, tc.want)
			}
		})
	}
}

func TestVersionArg(t *testing.T) {
	t.Parallel()

	if _, err := versionArg(nil, "force"); err == nil || !strings.Contains(err.Error(), "force requires") {
		t.Fatalf("expected missing argument error, got %v", err)
	}
	if _, err := versionArg([]string{"-1"}, "goto"); err == nil {
		t.Fatalf("expected negative version to fail")
	}
	got, err := versionArg([]string{"1772000004"}, "goto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1772000004 {
		t.Fatalf("unexpected version %d", got)
	}
}

func TestFindMigrationsDirPrefersOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := findMigrationsDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}
}

func TestFindMigrationsDirSkipsFiles(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "001_init.up.sql")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	// Tests run in cmd/migration, where no default directory exists.
	if _, err := findMigrationsDir(file); err == nil {
		t.Fatalf("expected a plain file to be rejected")
	}
}

func TestPrintUsageListsEveryCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	for name := range schemaCommands {
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("usage misses %q:\n%s", name, buf.String())
		}
	}
	if !strings.Contains(buf.String(), "seed") {
		t.Fatalf("usage misses seed")
	}
}
