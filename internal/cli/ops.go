package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/amirbrooks/todo/internal/prompt"
	"github.com/amirbrooks/todo/internal/render"
	"github.com/amirbrooks/todo/internal/store"
)

// App applies one user operation to a loaded task collection.
type App struct {
	Tasks *store.Tasks
	Out   *render.Printer
	// Input is asked for ids when delete is run without any.
	Input prompt.LineReader
	Log   *log.Logger
}

// EditInput carries the fields to change; nil leaves a field as it is.
// An empty Group clears the group.
type EditInput struct {
	Priority *int
	Group    *string
	Text     *string
}

const (
	msgEmpty       = "Nothing to do :)"
	msgDeleteAsk   = "No todo selected: which one(s) would you like to delete?"
	msgDeleteHint  = "Enter ids separated by commas"
	msgFinished    = "Finished todo "
	msgFinishedEnd = " :)"
)

func idSegment(id int) render.Segment {
	return render.Segment{Text: "(" + strconv.Itoa(id) + ")", Style: render.Alert}
}

// Add validates and inserts a task.
func (a *App) Add(text string, priority int, group string) error {
	id, err := a.Tasks.Add(priority, group, text)
	if err != nil {
		return err
	}
	a.Log.Debug("added task", "id", id, "priority", priority, "group", group)
	e, _ := a.Tasks.Lookup(id)
	return a.Out.Println(append(render.Line{render.Text("Added todo: ")}, render.TaskLine(e)...)...)
}

// List prints every task in display order.
func (a *App) List() error {
	if a.Tasks.Len() == 0 {
		return a.Out.Println(render.Text(msgEmpty))
	}
	return a.Out.PrintLines(render.Format(a.Tasks.Entries(store.Descending)))
}

// Delete removes the given ids. With none given it shows the list and asks
// for a comma separated line of ids.
func (a *App) Delete(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		var err error
		ids, err = a.askIDs(ctx)
		if err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}

	res := a.Tasks.Remove(ids)
	for _, e := range res.Removed {
		a.Log.Debug("removed task", "id", e.Desc.ID)
		err := a.Out.Println(
			render.Text(msgFinished),
			idSegment(e.Desc.ID),
			render.Text(": "+e.Text+msgFinishedEnd),
		)
		if err != nil {
			return err
		}
	}
	for _, id := range res.Missing {
		err := a.Out.Println(render.Text("There was no task with index "), idSegment(id))
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) askIDs(ctx context.Context) ([]int, error) {
	if a.Tasks.Len() == 0 {
		return nil, a.Out.Println(render.Text(msgEmpty))
	}
	if err := a.Out.Println(render.Text(msgDeleteAsk)); err != nil {
		return nil, err
	}
	if err := a.Out.Plain().PrintLines(render.Format(a.Tasks.Entries(store.Descending))); err != nil {
		return nil, err
	}
	line, err := a.Input.ReadLine(ctx, msgDeleteHint)
	if err != nil {
		return nil, err
	}
	ids, errs := ParseIDs(line)
	for _, perr := range errs {
		a.Log.Debug("skipping id", "err", perr)
		if err := a.Out.Println(render.Segment{Text: perr.Error(), Style: render.Alert}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Edit changes priority, group or text of task id. A missing id is reported
// and leaves the collection untouched.
func (a *App) Edit(id int, in EditInput) error {
	cur, ok := a.Tasks.Lookup(id)
	if !ok {
		return a.Out.Println(render.Text("Task "), idSegment(id), render.Text(" does not exist"))
	}
	if in.Text != nil && strings.TrimSpace(*in.Text) == "" {
		return fmt.Errorf("%w: task cannot be empty or only whitespace", store.ErrInvalidTask)
	}
	priority := cur.Desc.Priority
	if in.Priority != nil {
		priority = *in.Priority
	}
	group := cur.Desc.Group
	if in.Group != nil {
		group = *in.Group
	}

	newID, err := a.Tasks.Edit(id, priority, group)
	if err != nil {
		return err
	}
	if in.Text != nil {
		if err := a.Tasks.SetText(newID, *in.Text); err != nil {
			return err
		}
	}
	a.Log.Debug("edited task", "from", id, "to", newID)
	e, _ := a.Tasks.Lookup(newID)
	return a.Out.Println(append(render.Line{render.Text("Edited todo: ")}, render.TaskLine(e)...)...)
}

// ParseIDs splits a comma separated line into ids. Tokens that are not
// integers come back as ErrInputParse errors; empty tokens are skipped.
func ParseIDs(line string) ([]int, []error) {
	var (
		ids  []int
		errs []error
	)
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.Atoi(tok)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %q is not an id", store.ErrInputParse, tok))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errs
}
