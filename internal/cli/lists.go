package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/todolists/internal/list"
	"github.com/roach88/todolists/internal/store"
	"github.com/roach88/todolists/internal/web"
)

// ListSummary is one row of the lists command.
type ListSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Todos     int    `json:"todos"`
	Remaining int    `json:"remaining"`
	Completed bool   `json:"completed"`
}

// ListSummaries renders as a table in text output.
type ListSummaries []ListSummary

func (ls ListSummaries) String() string {
	if len(ls) == 0 {
		return "No lists."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREMAINING\tSTATUS")
	for _, s := range ls {
		status := "open"
		if s.Completed {
			status = "complete"
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\n", s.ID, s.Name, s.Remaining, s.Todos, status)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// ListDetail is the output of the show command.
type ListDetail struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Completed bool        `json:"completed"`
	Remaining int         `json:"remaining"`
	Todos     []list.Todo `json:"todos"`
}

func (d ListDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d/%d remaining)", d.Name, d.Remaining, len(d.Todos))
	for _, t := range d.Todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "\n  [%s] %d %s", mark, t.ID, t.Name)
	}
	return b.String()
}

// Message reports a completed change.
type Message struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func (m Message) String() string {
	return m.Message
}

type storeAction func(ctx context.Context, st list.Store, out *OutputFormatter) error

// withStore loads config, opens the database and runs fn against it.
func (o *RootOptions) withStore(cmd *cobra.Command, fn storeAction) error {
	out := o.formatter(cmd)

	cfg, err := o.loadConfig()
	if err != nil {
		_ = out.Error(CodeConfig, err.Error(), nil)
		return err
	}

	out.VerboseLog("opening database %s", cfg.DSN())
	st, err := store.Open(cfg.DSN())
	if err != nil {
		_ = out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	return fn(commandContext(cmd), st, out)
}

func newStoreCommand(opts *RootOptions, use, short string, args cobra.PositionalArgs, run func(args []string) storeAction) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, run(args))
		},
	}
}

// NewListsCommand creates the lists command.
func NewListsCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "lists", "Show all lists, incomplete first", cobra.NoArgs,
		func([]string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				lists, err := st.AllLists(ctx)
				if err != nil {
					return out.Fail(err)
				}
				summaries := make(ListSummaries, 0, len(lists))
				for _, l := range list.SortLists(lists) {
					summaries = append(summaries, ListSummary{
						ID:        l.ID,
						Name:      l.Name,
						Todos:     list.TodosCount(l),
						Remaining: list.TodosRemainingCount(l),
						Completed: list.IsListCompleted(l),
					})
				}
				return out.Success(summaries)
			}
		})
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "show <list-id>", "Show one list with its todos", cobra.ExactArgs(1),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, err := loadListArg(ctx, st, out, args[0])
				if err != nil {
					return err
				}
				return out.Success(ListDetail{
					ID:        l.ID,
					Name:      l.Name,
					Completed: list.IsListCompleted(*l),
					Remaining: list.TodosRemainingCount(*l),
					Todos:     list.SortTodos(l.Todos),
				})
			}
		})
}

// NewCreateCommand creates the create command.
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "create <name>", "Create a list", cobra.ExactArgs(1),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				name := list.NormalizeName(args[0])
				if err := validateListName(ctx, st, out, name); err != nil {
					return err
				}
				id, err := st.CreateNewList(ctx, name)
				if errors.Is(err, list.ErrDuplicateName) {
					return out.Invalid(list.MsgListNameUnique)
				}
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgListCreated, ID: id})
			}
		})
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "rename <list-id> <name>", "Rename a list", cobra.ExactArgs(2),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, err := loadListArg(ctx, st, out, args[0])
				if err != nil {
					return err
				}
				name := list.NormalizeName(args[1])
				if err := validateListName(ctx, st, out, name); err != nil {
					return err
				}
				err = st.UpdateListName(ctx, l.ID, name)
				if errors.Is(err, list.ErrDuplicateName) {
					return out.Invalid(list.MsgListNameUnique)
				}
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgListUpdated, ID: l.ID})
			}
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "delete <list-id>", "Delete a list and its todos", cobra.ExactArgs(1),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, err := loadListArg(ctx, st, out, args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteList(ctx, l.ID); err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgListDeleted, ID: l.ID})
			}
		})
}

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "add <list-id> <name>", "Add a todo to a list", cobra.ExactArgs(2),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, err := loadListArg(ctx, st, out, args[0])
				if err != nil {
					return err
				}
				name := list.NormalizeName(args[1])
				if msg := list.ErrorForTodo(name); msg != "" {
					return out.Invalid(msg)
				}
				id, err := st.CreateNewTodo(ctx, l.ID, name)
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgTodoAdded, ID: id})
			}
		})
}

// NewCheckCommand creates the check command, or uncheck when completed is
// false.
func NewCheckCommand(opts *RootOptions, completed bool) *cobra.Command {
	use, short := "check <list-id> <todo-id>", "Mark a todo completed"
	if !completed {
		use, short = "uncheck <list-id> <todo-id>", "Mark a todo not completed"
	}
	return newStoreCommand(opts, use, short, cobra.ExactArgs(2),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, todo, err := loadTodoArgs(ctx, st, out, args[0], args[1])
				if err != nil {
					return err
				}
				if err := st.UpdateTodoStatus(ctx, l.ID, todo.ID, completed); err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgTodoUpdated, ID: todo.ID})
			}
		})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "remove <list-id> <todo-id>", "Delete a todo", cobra.ExactArgs(2),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, todo, err := loadTodoArgs(ctx, st, out, args[0], args[1])
				if err != nil {
					return err
				}
				if err := st.DeleteTodoFromList(ctx, l.ID, todo.ID); err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgTodoDeleted, ID: todo.ID})
			}
		})
}

// NewCompleteAllCommand creates the complete-all command.
func NewCompleteAllCommand(opts *RootOptions) *cobra.Command {
	return newStoreCommand(opts, "complete-all <list-id>", "Mark every todo in a list completed", cobra.ExactArgs(1),
		func(args []string) storeAction {
			return func(ctx context.Context, st list.Store, out *OutputFormatter) error {
				l, err := loadListArg(ctx, st, out, args[0])
				if err != nil {
					return err
				}
				if err := st.MarkAllTodosAsCompleted(ctx, l.ID); err != nil {
					return out.Fail(err)
				}
				return out.Success(Message{Message: web.MsgAllTodosComplete, ID: l.ID})
			}
		})
}

func validateListName(ctx context.Context, st list.Store, out *OutputFormatter, name string) error {
	lists, err := st.AllLists(ctx)
	if err != nil {
		return out.Fail(err)
	}
	if msg := list.ErrorForListName(name, lists); msg != "" {
		return out.Invalid(msg)
	}
	return nil
}

func loadListArg(ctx context.Context, st list.Store, out *OutputFormatter, raw string) (*list.List, error) {
	id, err := parseID(raw)
	if err != nil {
		return nil, out.Invalid(fmt.Sprintf("invalid list id %q", raw))
	}
	l, err := list.LoadList(ctx, st, id)
	if err != nil {
		return nil, out.Fail(err)
	}
	return l, nil
}

func loadTodoArgs(ctx context.Context, st list.Store, out *OutputFormatter, rawList, rawTodo string) (*list.List, *list.Todo, error) {
	l, err := loadListArg(ctx, st, out, rawList)
	if err != nil {
		return nil, nil, err
	}
	todoID, err := parseID(rawTodo)
	if err != nil {
		return nil, nil, out.Invalid(fmt.Sprintf("invalid todo id %q", rawTodo))
	}
	todo := list.FindTodoByID(l.Todos, todoID)
	if todo == nil {
		msg := fmt.Sprintf("The specified todo with id %d was not found in list %d.", todoID, l.ID)
		_ = out.Error(CodeNotFound, msg, nil)
		return nil, nil, NewExitError(ExitFailure, msg)
	}
	return l, todo, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}
