package plugin

import (
	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
)

// Stage orders transforms within a build. Document-stage transforms see a
// single file; project-stage transforms run once references are resolved.
type Stage string

const (
	StageDocument Stage = "document"
	StageProject  Stage = "project"
)

// TransformFunc mutates a tree in place, reporting through file.
type TransformFunc func(tree *mdast.Node, file *diag.File)

// TransformSpec names a transform and the stage it belongs to.
type TransformSpec struct {
	Name  string
	Stage Stage
	Run   TransformFunc
}

// Plugin bundles transforms under a name.
type Plugin struct {
	Name       string
	Author     string
	License    string
	Transforms []TransformSpec
}

// Registry holds transforms from registered plugins.
type Registry struct {
	plugins []Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// Register adds a plugin. Registration order is execution order within a stage.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
}

// Transforms returns the registered transforms of a stage.
func (r *Registry) Transforms(stage Stage) []TransformSpec {
	var out []TransformSpec
	for _, p := range r.plugins {
		for _, t := range p.Transforms {
			if t.Stage == stage {
				out = append(out, t)
			}
		}
	}
	return out
}

// Stages lists the stages in execution order.
var Stages = []Stage{StageDocument, StageProject}

// Run executes document-stage transforms, then project-stage ones.
func (r *Registry) Run(tree *mdast.Node, file *diag.File) {
	for _, stage := range Stages {
		r.RunStage(stage, tree, file)
	}
}

// RunStage executes the transforms of a single stage.
func (r *Registry) RunStage(stage Stage, tree *mdast.Node, file *diag.File) {
	for _, t := range r.Transforms(stage) {
		t.Run(tree, file)
	}
}
