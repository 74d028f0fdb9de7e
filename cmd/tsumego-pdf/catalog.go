package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/yamlutil"
)

// Sentinel errors for catalog commands.
var (
	ErrNoImportInput = errors.New("no collection files or directories given")
	ErrNoExportName  = errors.New("export needs exactly one collection name")
)

// runImport loads YAML collections into the SQLite catalog. Importing a
// collection again replaces it.
func runImport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCatalogFlags("import", args, env.Stderr, printImportUsage)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) == 0 {
		return ErrNoImportInput
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.catalog.path != "" {
		cfg.Catalog.Path = flags.catalog.path
	}
	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)

	var cols []*puzzle.Collection
	for _, p := range positional {
		loaded, err := loadCollections(p)
		if err != nil {
			return err
		}
		cols = append(cols, loaded...)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), dirPermissions); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	st, err := puzzle.OpenSQLite(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, c := range cols {
		if err := st.Import(ctx, c); err != nil {
			return fmt.Errorf("importing %s: %w", c.Name, err)
		}
		logger.Debug("collection imported", "name", c.Name, "catalog", st.Path())
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "imported %s\n", c.Name)
		}
	}
	return nil
}

// loadCollections reads a collection file or every collection of a
// directory.
func loadCollections(path string) ([]*puzzle.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return puzzle.LoadDir(path)
	}
	c, err := puzzle.LoadCollectionFile(path)
	if err != nil {
		return nil, err
	}
	return []*puzzle.Collection{c}, nil
}

// runCollections lists the available collections.
func runCollections(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseCatalogFlags("collections", args, env.Stderr, printCollectionsUsage)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.catalog.path != "" {
		cfg.Catalog.Path = flags.catalog.path
	}
	if flags.catalog.collections != "" {
		cfg.Catalog.Collections = flags.catalog.collections
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.Collections(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROBLEMS\tSECTIONS\tLABEL")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", info.Name, info.Problems, len(info.Sections), info.Label)
	}
	return tw.Flush()
}

// runExport writes a catalog collection back to YAML, on stdout or to -o.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) != 1 {
		return ErrNoExportName
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.catalog.path != "" {
		cfg.Catalog.Path = flags.catalog.path
	}
	if !fileutil.FileExists(cfg.Catalog.Path) {
		return fmt.Errorf("%w: %s", ErrCatalogMissing, cfg.Catalog.Path)
	}

	st, err := puzzle.OpenSQLite(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.Export(ctx, positional[0])
	if err != nil {
		return err
	}
	data, err := yamlutil.Marshal(c)
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err = env.Stdout.Write(data)
		return err
	}
	err = fileutil.AtomicWrite(flags.output, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", flags.output, err)
	}
	return nil
}
