// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package export runs the export passes for one object.
package export

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/merge"
	"github.com/walteh/metsexport/pkg/mets"
	"github.com/walteh/metsexport/pkg/object"
	"github.com/walteh/metsexport/pkg/plan"
	"github.com/walteh/metsexport/pkg/storage"
	"github.com/walteh/metsexport/pkg/text"
	"github.com/walteh/metsexport/pkg/validate"
	"gitlab.com/tozd/go/errors"
)

// ProblemValidation heads the problem list of a pass stopped by the validator
const ProblemValidation = "Export cancelled because of validation errors"

// ✅ Validator checks the metadata document before anything is copied
type Validator interface {
	Validate(ctx context.Context, doc *mets.Document, profile *config.Profile) (bool, []string)
}

// 🎛️ Option configures an Orchestrator
type Option func(*Orchestrator)

// WithValidator replaces the structural validator
func WithValidator(v Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithReporter sets the pass reporter
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithScratchNames sets the generator for per-pass scratch directory names
func WithScratchNames(fn func() string) Option {
	return func(o *Orchestrator) { o.scratchName = fn }
}

// 🎼 Orchestrator selects target projects and runs one export pass per match
type Orchestrator struct {
	storage     storage.Storage
	config      *config.File
	validator   Validator
	reporter    Reporter
	scratchName func() string
}

// 🏭 New creates an orchestrator
func New(st storage.Storage, cfg *config.File, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		storage:     st,
		config:      cfg,
		validator:   validate.New(cfg.AnchorTypes),
		reporter:    nopReporter{},
		scratchName: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// 🚀 Export runs every matching pass for obj, in order, stopping at the first aborted pass.
// Problems are collected in the result. Only storage faults are returned as errors, and the
// object's project is restored before they are.
func (o *Orchestrator) Export(ctx context.Context, obj *object.Object) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("object", obj.Title).Logger()
	ctx = logger.WithContext(ctx)

	result := &Result{Object: obj.Title, Success: true}

	base, err := o.config.ProfileFor(obj.Project())
	if err != nil {
		return result.fail(fmt.Sprintf("no export configuration for project %s", obj.Project())), nil
	}

	if err := base.CheckTargets(); err != nil {
		return result.fail(err.Error()), nil
	}

	doc, err := o.readMetadata(ctx, obj)
	if err != nil {
		return result.fail(fmt.Sprintf("cannot read metadata of %s: %v", obj.Title, err)), nil
	}

	replacer := o.replacer(obj, doc)

	projects, problem := o.selectProjects(obj, base, replacer)
	if problem != "" {
		return result.fail(problem), nil
	}
	result.Matched = len(projects)

	if len(projects) == 0 {
		logger.Info().Msg("no target condition matched, nothing to export")
		return result, nil
	}

	for _, project := range projects {
		pass, err := o.pass(ctx, obj, doc, project, replacer)
		result.Passes = append(result.Passes, pass)
		result.Problems = append(result.Problems, pass.Problems...)
		if err != nil {
			result.Success = false
			return result, err
		}
		if pass.State == StateAborted {
			result.Success = false
			break
		}
	}

	return result, nil
}

func (o *Orchestrator) readMetadata(ctx context.Context, obj *object.Object) (*mets.Document, error) {
	data, err := o.storage.ReadFile(ctx, obj.MetadataFile)
	if err != nil {
		return nil, err
	}
	return mets.Parse(data)
}

func (o *Orchestrator) replacer(obj *object.Object, doc *mets.Document) *text.Replacer {
	vars := text.Variables{ProcessTitle: obj.Title, ProcessID: obj.ID, ProjectName: obj.Project()}

	trimmed := doc.Copy()
	trimmed.TrimMetadata()
	st, err := trimmed.Split(o.config.AnchorTypes)
	if err != nil {
		return text.NewReplacer(vars, nil)
	}
	return text.NewReplacer(vars, text.FromStructure(st))
}

// 🎯 selectProjects evaluates the selectors of the current profile. Without selectors the
// current project is the only target.
func (o *Orchestrator) selectProjects(obj *object.Object, profile *config.Profile, replacer *text.Replacer) ([]string, string) {
	if len(profile.Targets) == 0 {
		return []string{obj.Project()}, ""
	}

	var projects []string
	for _, sel := range profile.Targets {
		if replacer.Replace(sel.Key) != sel.Value {
			continue
		}
		if sel.CurrentProject() {
			projects = append(projects, obj.Project())
			continue
		}
		project := sel.TargetProject()
		if !o.config.HasProfile(project) {
			return nil, fmt.Sprintf("target condition met but project %s does not exist", project)
		}
		projects = append(projects, project)
	}
	return projects, ""
}

type passRun struct {
	ctx    context.Context
	result *PassResult
}

func (r *passRun) advance(state State) {
	r.result.State = state
	zerolog.Ctx(r.ctx).Debug().Str("state", state.String()).Msg("pass state")
}

func (r *passRun) abort(problems ...string) {
	r.result.Problems = append(r.result.Problems, problems...)
	r.advance(StateAborted)
	for _, p := range problems {
		zerolog.Ctx(r.ctx).Error().Msg(p)
	}
}

// 🔁 pass exports obj into project. The object's project is swapped for the duration and
// restored on every return path, and the scratch directory is always removed.
func (o *Orchestrator) pass(ctx context.Context, obj *object.Object, doc *mets.Document, project string, replacer *text.Replacer) (pr PassResult, err error) {
	restore := obj.SwapProject(project)
	defer restore()

	logger := zerolog.Ctx(ctx).With().Str("project", project).Logger()
	ctx = logger.WithContext(ctx)

	pr = PassResult{Object: obj.Title, Project: project, State: StateIdle}
	run := &passRun{ctx: ctx, result: &pr}

	o.reporter.StartPass(ctx, obj.Title, project)
	defer func() {
		if err != nil && pr.State != StateAborted {
			run.abort(err.Error())
		}
		o.reporter.EndPass(ctx, pr)
	}()

	profile, perr := o.config.ProfileFor(project)
	if perr != nil {
		run.abort(fmt.Sprintf("no export configuration for project %s", project))
		return pr, nil
	}
	replacer = replacer.WithProject(project)
	run.advance(StateProfileSelected)

	// scratch metadata
	scratch := path.Join(o.config.TempDir, "metsexport-"+o.scratchName())
	defer func() {
		if derr := o.storage.DeleteFile(ctx, scratch); derr != nil {
			logger.Warn().Err(derr).Str("scratch", scratch).Msg("removing scratch directory")
		}
	}()

	anchorName := obj.Title + "_anchor.xml"
	pkg, perr := doc.Prepare(o.config.AnchorTypes, anchorName)
	if perr != nil {
		run.abort(fmt.Sprintf("cannot prepare metadata of %s: %v", obj.Title, perr))
		return pr, nil
	}

	files, err := o.writeScratch(ctx, scratch, obj.Title, pkg)
	if err != nil {
		return pr, err
	}
	run.advance(StateMetadataPrepared)

	if profile.ValidateMetadata {
		checked := doc.Copy()
		checked.TrimMetadata()
		if ok, messages := o.validator.Validate(ctx, checked, profile); !ok {
			run.abort(append([]string{ProblemValidation}, messages...)...)
			return pr, nil
		}
	}
	run.advance(StateValidated)

	root := strings.TrimSpace(replacer.Replace(profile.ExportRoot))
	if root == "" {
		run.abort("no export folder configured")
		return pr, nil
	}
	if profile.CreateSubfolder {
		root = path.Join(root, obj.Title)
	}
	pr.Destination = root
	if err := o.storage.CreateDirectories(ctx, root); err != nil {
		return pr, errors.Errorf("creating export folder: %w", err)
	}

	tasks, err := o.plan(ctx, obj, profile, root, replacer)
	if errors.Is(err, plan.ErrUnsafeDestination) {
		run.abort(fmt.Sprintf("cannot export %s: %v", obj.Title, err))
		return pr, nil
	}
	if err != nil {
		return pr, err
	}
	pr.Tasks = len(tasks)

	pr.Copy, err = plan.Apply(ctx, o.storage, tasks, o.reporter)
	if err != nil {
		return pr, err
	}
	run.advance(StateFoldersCopied)

	target := merge.Target{Primary: path.Join(root, obj.Title+".xml")}
	if err := o.storage.CopyFile(ctx, files[0], target.Primary); err != nil {
		return pr, errors.Errorf("copying metadata: %w", err)
	}
	if len(files) > 1 {
		target.Anchor = path.Join(root, anchorName)
		if err := o.storage.CopyFile(ctx, files[1], target.Anchor); err != nil {
			return pr, errors.Errorf("copying anchor metadata: %w", err)
		}
	}

	candidates, err := merge.Candidates(ctx, o.storage, obj.ImportDir())
	if err != nil {
		return pr, err
	}
	pr.Merge = merge.New(o.storage, o.config.AnchorTypes).Merge(ctx, target, profile, candidates)
	pr.Problems = append(pr.Problems, pr.Merge.Problems...)
	for _, p := range pr.Merge.Problems {
		logger.Error().Msg(p)
	}
	run.advance(StateMetadataFinalized)

	run.advance(StateDone)
	logger.Info().Str("destination", root).Int("tasks", pr.Tasks).Msg("export pass finished")
	return pr, nil
}

// writeScratch writes the primary document and, when present, the anchor document
func (o *Orchestrator) writeScratch(ctx context.Context, dir, title string, pkg *mets.Package) ([]string, error) {
	docs := []*mets.Document{pkg.Primary}
	names := []string{title + ".xml"}
	if pkg.Anchor != nil {
		docs = append(docs, pkg.Anchor)
		names = append(names, title+"_anchor.xml")
	}

	files := make([]string, 0, len(docs))
	for i, d := range docs {
		data, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		p := path.Join(dir, names[i])
		if err := o.storage.WriteFile(ctx, p, data); err != nil {
			return nil, errors.Errorf("writing scratch metadata: %w", err)
		}
		files = append(files, p)
	}
	return files, nil
}

// 🗺️ Plan returns the copy tasks a pass for the object's current project would run
func (o *Orchestrator) Plan(ctx context.Context, obj *object.Object) ([]plan.CopyTask, string, error) {
	profile, err := o.config.ProfileFor(obj.Project())
	if err != nil {
		return nil, "", err
	}

	var replacer *text.Replacer
	if doc, err := o.readMetadata(ctx, obj); err == nil {
		replacer = o.replacer(obj, doc)
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("metadata unreadable, metadata placeholders resolve empty")
		replacer = text.NewReplacer(text.Variables{ProcessTitle: obj.Title, ProcessID: obj.ID, ProjectName: obj.Project()}, nil)
	}

	root := strings.TrimSpace(replacer.Replace(profile.ExportRoot))
	if root == "" {
		return nil, "", errors.Errorf("no export folder configured")
	}
	if profile.CreateSubfolder {
		root = path.Join(root, obj.Title)
	}

	tasks, err := o.plan(ctx, obj, profile, root, replacer)
	return tasks, root, err
}

func (o *Orchestrator) plan(ctx context.Context, obj *object.Object, profile *config.Profile, root string, replacer *text.Replacer) ([]plan.CopyTask, error) {
	generic := make([]plan.GenericSource, 0, len(profile.GenericFolders))
	for _, rule := range profile.GenericFolders {
		generic = append(generic, plan.GenericSource{Rule: rule, Path: obj.GenericFolderPath(rule.Name)})
	}

	tasks, err := plan.New(o.storage, replacer).Plan(ctx, plan.Input{
		Profile:         profile,
		Sources:         obj.SourcePaths(),
		Generic:         generic,
		DestinationRoot: root,
		ObjectTitle:     obj.Title,
	})
	if err != nil {
		return nil, errors.Errorf("planning copies: %w", err)
	}
	return tasks, nil
}
