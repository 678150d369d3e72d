package main

import (
	"github.com/Faultbox/mattework/internal/scene"
	"github.com/Faultbox/mattework/internal/scene/memscene"
)

// sampleScene is the document written by init: a character and a prop,
// with one existing material-ID matte.
func sampleScene() *memscene.Scene {
	s := memscene.New()
	s.AddMaterial("char:skin_MTL", scene.IDOf(1))
	s.AddMaterial("char:eyes_MTL", scene.IDOf(2))
	s.AddMaterial("char:cloth_MTL", scene.NoID)
	s.AddMaterial("prop:metal_MTL", scene.NoID)
	s.AddMaterial("prop:rust_MTL", scene.IDOf(0))

	s.AddMesh("char:bodyShape", "char:skin_MTL", "char:cloth_MTL")
	s.AddMesh("char:headShape", "char:skin_MTL", "char:eyes_MTL")
	s.AddMesh("prop:crateShape", "prop:metal_MTL", "prop:rust_MTL")

	s.AddMatte(memscene.Matte{
		Name:           "skin_eyes_matte",
		Red:            scene.IDOf(1),
		Green:          scene.IDOf(2),
		UsesMaterialID: true,
	})
	s.AddMatte(memscene.Matte{
		Name:  "vrayRE_Multi_Matte",
		Red:   scene.IDOf(1),
		Green: scene.IDOf(2),
		Blue:  scene.IDOf(3),
	})

	s.SetSelection("char:bodyShape", "char:headShape")
	return s
}
