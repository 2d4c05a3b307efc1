package cli

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/client/board"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/filex"
	"github.com/dmitrijs2005/taskboard/internal/netx"
)

var getMultiline = GetMultiline
var downloadSnapshot = netx.DownloadPresignedURL
var getTextWithDefault = GetTextWithDefault

const timeLayout = "2006-01-02 15:04"

// List reloads the board from the server and prints it.
func (a *App) List(ctx context.Context) error {
	err := a.boardService.Load(ctx)
	a.flushNotices()
	if err != nil {
		return err
	}
	renderColumns(a.out, a.boardService.Columns())
	return nil
}

// Add creates a placeholder task and opens it in the editor.
func (a *App) Add(ctx context.Context) error {
	t, err := a.boardService.Add(ctx)
	if err != nil {
		a.flushNotices()
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", t.ID)
	return a.edit(ctx, t.ID)
}

func (a *App) Edit(ctx context.Context, id string) error {
	if _, ok := a.boardService.Edit(id); !ok {
		fmt.Fprintln(a.out, "No such task:", id)
		return nil
	}
	return a.edit(ctx, id)
}

// edit prompts for the open draft's fields; empty answers keep the current
// values.
func (a *App) edit(ctx context.Context, id string) error {
	d, ok := a.boardService.Edit(id)
	if !ok {
		return nil
	}

	title, err := getTextWithDefault(a.reader, "Title", d.Title, a.out)
	if err != nil {
		return err
	}
	desc, err := getMultiline(a.reader, fmt.Sprintf("Description [%s]", d.Description), a.out)
	if err != nil {
		return err
	}
	if desc == "" {
		desc = d.Description
	}

	t, err := a.boardService.Save(ctx, id, title, desc)
	a.flushNotices()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %q\n", t.Title)
	return nil
}

// View prints a task from the loaded board without contacting the server.
func (a *App) View(_ context.Context, id string) error {
	t, ok := a.boardService.View(id)
	if !ok {
		fmt.Fprintln(a.out, "No such task:", id)
		return nil
	}
	// the terminal view is printed once, so it closes straight away
	defer a.boardService.CloseView()
	renderTask(a.out, t)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	err := a.boardService.Delete(ctx, id)
	a.flushNotices()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Move drops task id onto task overID: it takes overID's position and
// column.
func (a *App) Move(ctx context.Context, id, overID string) error {
	moved, err := a.boardService.Move(ctx, id, overID)
	a.flushNotices()
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(a.out, "Nothing to move")
		return nil
	}
	renderColumns(a.out, a.boardService.Columns())
	return nil
}

// Search sets the filter term; an empty term shows every task.
func (a *App) Search(_ context.Context, term string) error {
	a.boardService.SetSearch(term)
	renderColumns(a.out, a.boardService.Columns())
	return nil
}

func (a *App) Sort(_ context.Context, mode string) error {
	m, ok := board.ParseSortMode(mode)
	if !ok {
		fmt.Fprintf(a.out, "Unknown sort mode %q (use %s or %s)\n", mode, board.SortRecent, board.SortOldest)
		return nil
	}
	a.boardService.SetSort(m)
	renderColumns(a.out, a.boardService.Columns())
	return nil
}

func (a *App) Notices(_ context.Context) error {
	a.flushNotices()
	return nil
}

// Export uploads a snapshot of the board and prints its download link. With
// a non-empty dir the snapshot is also saved there.
func (a *App) Export(ctx context.Context, dir string) error {
	e, err := a.boardService.Export(ctx)
	a.flushNotices()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported to %s\nDownload (until %s): %s\n", e.Key, e.ExpiresAt.Local().Format(timeLayout), e.URL)

	if dir == "" {
		return nil
	}
	data, err := downloadSnapshot(ctx, e.URL)
	if err != nil {
		fmt.Fprintln(a.out, "Download failed:", err)
		return err
	}
	saved, err := filex.WriteInDir(dir, path.Base(e.Key), data)
	if err != nil {
		fmt.Fprintln(a.out, "Saving failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Saved to", saved)
	return nil
}

func renderColumns(w io.Writer, cols []board.Column) {
	for _, c := range cols {
		fmt.Fprintf(w, "== %s (%d) ==\n", c.Status.Label(), len(c.Tasks))
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "  %s  %s [%s]\n", t.ID, t.Title, t.Priority)
		}
	}
}

func renderTask(w io.Writer, t models.Task) {
	fmt.Fprintf(w, "ID:       %s\n", t.ID)
	fmt.Fprintf(w, "Title:    %s\n", t.Title)
	fmt.Fprintf(w, "Status:   %s\n", t.Status.Label())
	fmt.Fprintf(w, "Priority: %s\n", t.Priority)
	fmt.Fprintf(w, "Created:  %s\n", t.CreatedAt.Local().Format(timeLayout))
	if t.Description != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
