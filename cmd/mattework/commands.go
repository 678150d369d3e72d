package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/config"
	"github.com/Faultbox/mattework/internal/logger"
	"github.com/Faultbox/mattework/internal/panel"
	"github.com/Faultbox/mattework/internal/scene"
)

var errUsage = errors.New("usage")

type command func(s *session, args []string, w io.Writer) error

// mutating commands save the document whenever the scene was written,
// including after a failure that left partial changes committed.
var commands = map[string]struct {
	run      command
	mutating bool
}{
	"show":         {cmdShow, false},
	"set-id":       {cmdSetID, true},
	"make-matte":   {cmdMakeMatte, true},
	"delete-matte": {cmdDeleteMatte, true},
	"rename-matte": {cmdRenameMatte, true},
	"set-channels": {cmdSetChannels, true},
}

func run(cfg *config.Config, args []string, w io.Writer) (err error) {
	name, args := args[0], args[1:]
	switch name {
	case "init":
		return cmdInit(cfg, args, w)
	case "lowest-id":
		return cmdLowestID(cfg, args, w)
	}

	c, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	err = c.run(s, args, w)
	if c.mutating && s.scene.Writes() > 0 {
		if saveErr := s.save(); saveErr != nil {
			return multierr.Append(err, saveErr)
		}
		logger.Info("scene saved", zap.String("path", cfg.Scene.Path), zap.Int("writes", s.scene.Writes()))
	}
	return err
}

func cmdInit(cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing document")
	configOut := fs.String("config-out", "", "Also write the effective settings to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Scene.Path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", cfg.Scene.Path)
	}
	if *force {
		if err := os.Remove(cfg.Scene.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.Save(sampleScene().Snapshot()); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote sample scene to %s\n", cfg.Scene.Path)

	if *configOut != "" {
		if err := cfg.SaveTo(*configOut); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote settings to %s\n", *configOut)
	}
	return nil
}

func cmdLowestID(cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("lowest-id", flag.ContinueOnError)
	zero := fs.Bool("zero", false, "Allow 0")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.model.LowestUnusedID(*zero || cfg.Matte.IncludeZero)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, id)
	return nil
}

func cmdShow(s *session, args []string, w io.Writer) error {
	var err error
	switch {
	case len(args) > 0:
		known := make(map[scene.MeshRef]bool)
		for _, m := range s.scene.Meshes() {
			known[m] = true
		}
		for _, name := range args {
			if !known[scene.MeshRef(name)] {
				return fmt.Errorf("mesh %q: %w", name, scene.ErrInvalidReference)
			}
		}
		s.scene.SetSelection(args...)
		err = s.panel.Open()
	case len(s.scene.SelectedMeshes()) > 0:
		err = s.panel.Open()
	default:
		err = s.openAll()
	}
	if err != nil {
		return err
	}
	return s.panel.Render(w)
}

// selectMaterials binds every mesh and selects the rows of refs, in order.
func selectMaterials(s *session, names []string) error {
	if err := s.openAll(); err != nil {
		return err
	}
	refs := materialRefs(names)
	for _, ref := range refs {
		if s.model.Material(ref) == nil {
			return fmt.Errorf("material %q is not assigned to any mesh: %w", ref, scene.ErrInvalidReference)
		}
	}
	s.panel.SelectMaterials(refs...)
	return nil
}

func cmdSetID(s *session, args []string, w io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: set-id <id|\"\"> <material...>", errUsage)
	}
	if err := selectMaterials(s, args[1:]); err != nil {
		return err
	}
	sel := s.panel.Selected()
	row := sel[len(sel)-1].(*panel.MaterialRow)
	if err := s.panel.EditMaterialID(row, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(w, s.panel.Status())
	return nil
}

func cmdMakeMatte(s *session, args []string, w io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: make-matte <material...>", errUsage)
	}
	if err := selectMaterials(s, args); err != nil {
		return err
	}
	err := s.panel.MakeMatte()
	fmt.Fprintln(w, s.panel.Status())
	return err
}

func cmdDeleteMatte(s *session, args []string, w io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: delete-matte <name...>", errUsage)
	}
	if err := s.panel.Open(); err != nil {
		return err
	}
	var rows []panel.Row
	for _, name := range args {
		row := s.panel.Matte(name)
		if row == nil {
			return fmt.Errorf("matte %q: %w", name, scene.ErrInvalidReference)
		}
		rows = append(rows, row)
	}
	s.panel.Select(rows...)
	if err := s.panel.DeleteSelectedMattes(); err != nil {
		return err
	}
	fmt.Fprintln(w, s.panel.Status())
	return nil
}

func cmdRenameMatte(s *session, args []string, w io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: rename-matte <old> <new>", errUsage)
	}
	if err := s.panel.Open(); err != nil {
		return err
	}
	row := s.panel.Matte(args[0])
	if row == nil {
		return fmt.Errorf("matte %q: %w", args[0], scene.ErrInvalidReference)
	}
	if err := s.panel.RenameMatte(row, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(w, row.Label())
	return nil
}

func cmdSetChannels(s *session, args []string, w io.Writer) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: set-channels <matte> <r> <g> <b>", errUsage)
	}
	if err := s.panel.Open(); err != nil {
		return err
	}
	row := s.panel.Matte(args[0])
	if row == nil {
		return fmt.Errorf("matte %q: %w", args[0], scene.ErrInvalidReference)
	}
	if err := s.panel.EditChannels(row, args[1], args[2], args[3]); err != nil {
		return err
	}
	fmt.Fprintln(w, s.panel.Status())
	return nil
}
