// Package intake runs the patient intake pipeline: demographic collection,
// free-text symptom intake, note preparation and the clinical documents
// derived from the notes.
package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/intake/pkg/display"
	"github.com/papercomputeco/intake/pkg/llm"
	"github.com/papercomputeco/intake/pkg/store"
	"github.com/papercomputeco/intake/pkg/transcript"
)

// ErrInputClosed is returned when input ends before the structured
// demographic fields are all answered.
var ErrInputClosed = errors.New("input closed")

const (
	introStructured = "Describe your demographic information to the intake bot. Type SUBMIT when done."
	introFreeform   = "Describe your demographics to the intake bot. Type FINISHED when you feel like you've given enough information."
	introSymptoms   = "Describe your symptoms to the intake bot. Type DONE when done."
)

// Completer sends a conversation to the completion service.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Completion, error)
}

// StandardField is one fixed demographic question and its answer.
type StandardField struct {
	Name  string
	Value string
}

// StandardFieldNames are asked in this order before free-text intake.
var StandardFieldNames = []string{"age (years)", "weight (lbs)", "height (inches)"}

// AboutMe renders the structured demographic turn sent to the model.
func AboutMe(fields []StandardField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Value
	}
	return "About Me: " + strings.Join(parts, ", ")
}

// Artifact is a file written by a run.
type Artifact struct {
	Kind string
	Text string
	Path string
}

// Result is what a completed run produced.
type Result struct {
	Fields      []StandardField
	Transcript  []transcript.Entry
	Artifacts   []Artifact
	TotalTokens int
}

// Paths returns the paths of every artifact written.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = a.Path
	}
	return out
}

// Runner drives a single intake session from the first demographic question
// to the last clinical document.
type Runner struct {
	completer Completer
	prompts   Prompts
	options   llm.Options
	store     *store.Store
	printer   *display.Printer
	input     *bufio.Reader
	logger    *zap.Logger

	stage        Stage
	conversation *llm.Conversation
	transcript   transcript.Transcript
	result       Result
}

// New creates a Runner reading patient input from in.
func New(completer Completer, prompts Prompts, options llm.Options, st *store.Store, printer *display.Printer, in io.Reader, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		completer: completer,
		prompts:   prompts,
		options:   options,
		store:     st,
		printer:   printer,
		input:     bufio.NewReader(in),
		logger:    logger,
		stage:     StageDemographicsStructured,
	}
}

// Stage returns the stage the runner is in.
func (r *Runner) Stage() Stage {
	return r.stage
}

// Run executes every stage in order. It stops at the first error; artifacts
// of later stages are not written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	steps := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageDemographicsStructured, r.demographicsStructured},
		{StageDemographicsFreeform, r.demographicsFreeform},
		{StageSymptomIntake, r.symptomIntake},
		{StageNotes, r.notes},
		{StageDiagnosis, r.document},
		{StageClinical, r.document},
		{StageReferrals, r.document},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.enter(step.stage)
		if err := step.run(ctx); err != nil {
			r.logger.Error("stage failed",
				zap.Stringer("stage", step.stage),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%s stage: %w", step.stage, err)
		}
	}
	r.enter(StageComplete)

	r.result.Transcript = r.transcript.Entries()
	result := r.result
	return &result, nil
}

func (r *Runner) enter(next Stage) {
	r.logger.Info("stage transition",
		zap.Stringer("from", r.stage),
		zap.Stringer("to", next),
		zap.Int("total_tokens", r.result.TotalTokens),
	)
	r.stage = next
}

func (r *Runner) demographicsStructured(ctx context.Context) error {
	system, err := r.prompts.Get(PromptDemographics)
	if err != nil {
		return err
	}
	r.conversation = llm.NewConversation(system)

	r.printer.Line(introStructured)
	r.printer.Line("\n")

	fields := make([]StandardField, 0, len(StandardFieldNames))
	for _, name := range StandardFieldNames {
		r.printer.Prompt(fmt.Sprintf("%s: %s: ", SpeakerPatient, name))
		value, ok, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no answer for %q", ErrInputClosed, name)
		}
		fields = append(fields, StandardField{Name: name, Value: value})
	}
	r.result.Fields = fields

	return r.exchange(ctx, AboutMe(fields), SpeakerDemographics)
}

func (r *Runner) demographicsFreeform(ctx context.Context) error {
	system, err := r.prompts.Get(PromptDemographics)
	if err != nil {
		return err
	}
	r.conversation.Append(llm.RoleSystem, system)

	r.printer.Line(introFreeform)
	return r.chatLoop(ctx, StageDemographicsFreeform.Info(), SpeakerPatient+": ")
}

func (r *Runner) symptomIntake(ctx context.Context) error {
	system, err := r.prompts.Get(PromptIntake)
	if err != nil {
		return err
	}
	r.conversation.Append(llm.RoleSystem, system)

	r.printer.Line(introSymptoms)
	return r.chatLoop(ctx, StageSymptomIntake.Info(), "\n\n"+SpeakerPatient+": ")
}

// chatLoop exchanges free-text turns until a sentinel is typed or input
// ends.
func (r *Runner) chatLoop(ctx context.Context, info StageInfo, prompt string) error {
	for {
		r.printer.Prompt(prompt)
		text, ok, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		if !ok {
			r.printer.Line("")
			r.logger.Info("input closed, ending loop", zap.Stringer("stage", info.Stage))
			return nil
		}
		if slices.Contains(info.Sentinels, text) {
			return nil
		}

		if err := r.exchange(ctx, text, info.Speaker); err != nil {
			return err
		}
	}
}

// exchange sends one patient turn and records the reply.
func (r *Runner) exchange(ctx context.Context, text, speaker string) error {
	r.transcript.Add(SpeakerPatient, text)
	r.conversation.Append(llm.RoleUser, text)

	reply, err := r.complete(ctx)
	if err != nil {
		return err
	}

	r.conversation.Append(llm.RoleAssistant, reply)
	r.transcript.Add(speaker, reply)
	r.printer.Reply(speaker, reply)
	return nil
}

func (r *Runner) notes(ctx context.Context) error {
	info := r.stage.Info()
	system, err := r.prompts.Get(info.Prompt)
	if err != nil {
		return err
	}

	r.printer.Banner(info.Banner)
	r.conversation.Reset(system)

	chat := r.transcript.ChatLog()
	if err := r.save(KindChat, chat); err != nil {
		return err
	}
	r.conversation.Append(llm.RoleUser, chat)

	notes, err := r.complete(ctx)
	if err != nil {
		return err
	}
	if err := r.save(KindNotes, notes); err != nil {
		return err
	}
	r.printer.Document(info.Header, notes)
	return nil
}

// document generates one clinical document from the notes.
func (r *Runner) document(ctx context.Context) error {
	info := r.stage.Info()
	system, err := r.prompts.Get(info.Prompt)
	if err != nil {
		return err
	}

	notes, err := r.artifact(KindNotes)
	if err != nil {
		return err
	}

	r.printer.Banner(info.Banner)
	r.conversation.Reset(system)
	r.conversation.Append(llm.RoleUser, notes)

	text, err := r.complete(ctx)
	if err != nil {
		return err
	}
	if err := r.save(info.Artifacts[0], text); err != nil {
		return err
	}
	r.printer.Document(info.Header, text)
	return nil
}

func (r *Runner) complete(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := r.completer.Complete(ctx, r.conversation.Messages(), r.options)
	if err != nil {
		return "", err
	}
	r.result.TotalTokens += c.TotalTokens
	return c.Text, nil
}

func (r *Runner) save(kind, text string) error {
	path, err := r.store.SaveArtifact(kind, text)
	if err != nil {
		return fmt.Errorf("could not save %s: %w", kind, err)
	}
	r.result.Artifacts = append(r.result.Artifacts, Artifact{Kind: kind, Text: text, Path: path})
	r.logger.Debug("artifact saved", zap.String("kind", kind), zap.String("path", path))
	return nil
}

func (r *Runner) artifact(kind string) (string, error) {
	for _, a := range r.result.Artifacts {
		if a.Kind == kind {
			return a.Text, nil
		}
	}
	return "", fmt.Errorf("no %s artifact has been produced", kind)
}

type line struct {
	text string
	err  error
}

// readLine returns the next trimmed input line. ok is false at end of input.
// Lines have no length limit. A cancelled ctx abandons a blocked read.
func (r *Runner) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	ch := make(chan line, 1)
	go func() {
		text, err := r.input.ReadString('\n')
		ch <- line{text: text, err: err}
	}()

	var got line
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case got = <-ch:
	}

	if got.err != nil && !errors.Is(got.err, io.EOF) {
		return "", false, fmt.Errorf("could not read input: %w", got.err)
	}
	if errors.Is(got.err, io.EOF) && got.text == "" {
		return "", false, nil
	}
	return strings.TrimSpace(got.text), true, nil
}
