package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cory-johannsen/deckdraw/internal/deck"
	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/scripting"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (a *app) list(args []string) error {
	fs := newFlags("list")
	all := fs.Bool("all", false, "include hidden collections")
	search := fs.String("search", "", "filter by name")
	if err := parse(fs, args); err != nil {
		return err
	}

	names := a.store.Search(*search)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, n := range names {
		if deck.IsHidden(n) && !*all {
			continue
		}
		entries, _ := a.store.Entries(n)
		fmt.Fprintf(tw, "%s\t%d\n", n, len(entries))
	}
	return tw.Flush()
}

func (a *app) draw(args []string) error {
	fs := newFlags("draw")
	n := fs.Int("n", 1, "number of draws")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needArgs(fs.Args(), 1, "<collection>"); err != nil {
		return err
	}

	consumed := 0
	var drawErr error
	for i := 0; i < *n; i++ {
		res, err := a.engine.Draw(a.store, fs.Arg(0))
		consumed += res.Stats.Consumed
		if err != nil {
			drawErr = err
			break
		}
		fmt.Fprintln(a.out, res.Text)
	}
	if consumed > 0 {
		if err := a.save(); err != nil {
			return errors.Join(drawErr, err)
		}
	}
	return drawErr
}

func (a *app) resolve(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: expected <text>", errUsage)
	}
	text, stats, err := a.engine.Resolve(a.store, joinArgs(args))
	if stats.Consumed > 0 {
		if saveErr := a.save(); saveErr != nil {
			return errors.Join(err, saveErr)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)
	return nil
}

func (a *app) dist(args []string) error {
	if err := needArgs(args, 1, "<collection>"); err != nil {
		return err
	}
	slices, err := a.engine.Distribution(a.store, args[0])
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, s := range slices {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", s.Label, s.Weight, s.Probability*100)
	}
	return tw.Flush()
}

func (a *app) roll(args []string) error {
	if err := needArgs(args, 1, "<expr>"); err != nil {
		return err
	}
	res, err := dice.NewLoggedRoller(a.engine.Source(), a.logger).RollExpr(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.String())
	return nil
}

func (a *app) importDoc(args []string) error {
	fs := newFlags("import")
	modeName := fs.String("mode", "merge", "merge or replace")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needArgs(fs.Args(), 1, "<file>"); err != nil {
		return err
	}
	mode, err := deck.ParseImportMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decode := deck.DecodeJSON
	if isYAML(path) {
		decode = deck.DecodeYAML
	}
	doc, err := decode(f)
	if err != nil {
		return err
	}
	if err := a.store.Import(doc, mode); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported %d collections\n", doc.Len())
	return a.save()
}

func (a *app) export(args []string) error {
	fs := newFlags("export")
	format := fs.String("format", "", "json or yaml (default from file extension, else json)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: expected [file]", errUsage)
	}

	path := fs.Arg(0)
	asYAML := *format == "yaml" || (*format == "" && isYAML(path))
	if *format != "" && *format != "json" && *format != "yaml" {
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}

	var buf bytes.Buffer
	encode := deck.EncodeJSON
	if asYAML {
		encode = deck.EncodeYAML
	}
	if err := encode(&buf, a.store); err != nil {
		return err
	}
	if path == "" {
		_, err := a.out.Write(buf.Bytes())
		if !asYAML {
			fmt.Fprintln(a.out)
		}
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (a *app) script(args []string) error {
	if err := needArgs(args, 1, "<file.lua>"); err != nil {
		return err
	}
	runner := scripting.NewRunner(a.engine, a.store, a.logger, 0)
	lines, runErr := runner.RunFile(a.ctx, args[0])
	for _, l := range lines {
		fmt.Fprintln(a.out, l)
	}
	if err := a.save(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (a *app) create(args []string) error {
	name := a.store.Create(joinArgs(args))
	fmt.Fprintln(a.out, name)
	return a.save()
}

func (a *app) rename(args []string) error {
	if err := needArgs(args, 2, "<old> <new>"); err != nil {
		return err
	}
	name, err := a.store.Rename(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, name)
	return a.save()
}

func (a *app) toggle(args []string) error {
	if err := needArgs(args, 1, "<name>"); err != nil {
		return err
	}
	name, err := a.store.ToggleHidden(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, name)
	return a.save()
}

func (a *app) remove(args []string) error {
	if err := needArgs(args, 1, "<name>"); err != nil {
		return err
	}
	if err := a.store.Delete(args[0]); err != nil {
		return err
	}
	return a.save()
}

func (a *app) move(args []string) error {
	if err := needArgs(args, 2, "<name> up|down"); err != nil {
		return err
	}
	var err error
	switch args[1] {
	case "up":
		err = a.store.MoveUp(args[0])
	case "down":
		err = a.store.MoveDown(args[0])
	default:
		return fmt.Errorf("%w: direction must be up or down", errUsage)
	}
	if err != nil {
		return err
	}
	return a.save()
}

func (a *app) addEntry(args []string) error {
	fs := newFlags("add")
	w := fs.String("w", "", "weight expression")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: expected <name> <content>", errUsage)
	}
	if err := a.store.AddEntry(fs.Arg(0), joinArgs(fs.Args()[1:]), *w); err != nil {
		return err
	}
	return a.save()
}

func (a *app) editEntry(args []string) error {
	fs := newFlags("edit")
	w := fs.String("w", "", "weight expression")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return fmt.Errorf("%w: expected <name> <index> <content>", errUsage)
	}
	idx, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("%w: index: %v", errUsage, err)
	}
	if err := a.store.UpdateEntry(fs.Arg(0), idx, joinArgs(fs.Args()[2:]), *w); err != nil {
		return err
	}
	return a.save()
}

func (a *app) removeEntry(args []string) error {
	if err := needArgs(args, 2, "<name> <index>"); err != nil {
		return err
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: index: %v", errUsage, err)
	}
	if err := a.store.RemoveEntry(args[0], idx); err != nil {
		return err
	}
	return a.save()
}
