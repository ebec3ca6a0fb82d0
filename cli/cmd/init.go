package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/profile"
	"github.com/ardnew/cropenv/value"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errors.New("no command line context"))
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrWriteConfig.Wrap(errors.New("configuration path undefined"))
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := json.MarshalIndent(i.buildConfig(ktx), "", strings.Repeat(" ", defaultConfigIndent))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, append(data, '\n'), 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig returns an object holding the value of every global flag,
// keyed by flag name. Help, profiling, empty and unset flags are left out.
func (i *Init) buildConfig(ktx *kong.Context) value.Value {
	members := map[string]value.Value{}

	ignore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		v, err := value.FromNative(ktx.FlagValue(flag))
		if err != nil || v.IsNull() {
			continue
		}

		if s, ok := v.AsString(); ok && s == "" {
			continue
		}

		if v.Kind() == value.KindArray && v.Len() == 0 {
			continue
		}

		members[flag.Name] = v
	}

	return value.Object(members)
}
