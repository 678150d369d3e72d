package main

import (
	"go.uber.org/multierr"

	"github.com/Faultbox/mattework/internal/config"
	"github.com/Faultbox/mattework/internal/logger"
	"github.com/Faultbox/mattework/internal/matte"
	"github.com/Faultbox/mattework/internal/panel"
	"github.com/Faultbox/mattework/internal/scene"
	"github.com/Faultbox/mattework/internal/scene/memscene"
	"github.com/Faultbox/mattework/internal/scene/store"
)

// session is one scene document loaded into the panel stack.
type session struct {
	store store.Store
	scene *memscene.Scene
	model *matte.Model
	panel *panel.Panel
}

func openSession(cfg *config.Config) (*session, error) {
	format, err := store.ParseFormat(cfg.Scene.Format, cfg.Scene.Path)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Scene.Path, format)
	if err != nil {
		return nil, err
	}
	snap, err := st.Load()
	if err != nil {
		return nil, multierr.Append(err, st.Close())
	}

	sc := memscene.FromSnapshot(snap,
		memscene.WithMaxID(cfg.Matte.MaxID),
		memscene.WithLogger(logger.Named("scene")),
	)
	model := matte.New(sc, matte.Config{
		Suffix:      cfg.Matte.Suffix,
		IncludeZero: cfg.Matte.IncludeZero,
	}, logger.Named("matte"))

	return &session{
		store: st,
		scene: sc,
		model: model,
		panel: panel.New(model, logger.Named("panel")),
	}, nil
}

// openAll binds every mesh of the scene.
func (s *session) openAll() error {
	if err := s.panel.Open(); err != nil {
		return err
	}
	return s.panel.AddMeshes(s.scene.Meshes()...)
}

func (s *session) save() error {
	return s.store.Save(s.scene.Snapshot())
}

func (s *session) Close() error {
	return s.store.Close()
}

func materialRefs(names []string) []scene.MaterialRef {
	refs := make([]scene.MaterialRef, len(names))
	for i, n := range names {
		refs[i] = scene.MaterialRef(n)
	}
	return refs
}
