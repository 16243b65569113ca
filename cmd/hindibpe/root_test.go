package main

import "testing"

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"train", "fetch", "eval", "encode"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlag(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag to be registered")
	}
}

func TestSetupLogger_LevelFallback(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "not-a-level", ""} {
		setupLogger(level)
	}
}

func TestTrainCmd_HasSmokeTestFlag(t *testing.T) {
	cmd := newTrainCmd()
	if cmd.Flags().Lookup("smoke-test") == nil {
		t.Error("expected --smoke-test flag on train")
	}
}
