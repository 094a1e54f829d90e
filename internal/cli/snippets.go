package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snippet-manager/internal/model"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Favorites bool
	Language  string
	Tags      []string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snippets",
		Long: `List every stored snippet, oldest first.

Filters are applied after loading and can be combined:
  snippets list --favorites --language go --tag http --tag server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Favorites, "favorites", false, "only favorites")
	cmd.Flags().StringVar(&opts.Language, "language", "", "only this language")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "only snippets carrying this tag (repeatable)")
	registerLanguageCompletion(cmd)

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	return opts.withApp(func(a *app) error {
		all, err := a.commands.List(cmd.Context())
		if err != nil {
			return failure(err)
		}

		snippets := make([]model.Snippet, 0, len(all))
		for _, s := range all {
			if opts.Favorites && !s.IsFavorite {
				continue
			}
			if opts.Language != "" && s.Language != opts.Language {
				continue
			}
			if !model.HasAllTags(s, opts.Tags) {
				continue
			}
			snippets = append(snippets, s)
		}

		return opts.formatter(cmd).Success(snippets, renderSnippets(snippets))
	})
}

// SnippetOptions holds the content flags shared by add and edit.
type SnippetOptions struct {
	*RootOptions
	Title    string
	Language string
	Tags     string
	Code     string
	File     string
}

func (o *SnippetOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Title, "title", "", "snippet title")
	cmd.Flags().StringVar(&o.Language, "language", "", "snippet language, e.g. go")
	cmd.Flags().StringVar(&o.Tags, "tags", "", `comma-separated tags, e.g. "http, server"`)
	cmd.Flags().StringVar(&o.Code, "code", "", "snippet code")
	cmd.Flags().StringVarP(&o.File, "file", "f", "", `read code from a file ("-" for stdin)`)
	cmd.MarkFlagsMutuallyExclusive("code", "file")
	registerLanguageCompletion(cmd)
}

// readCode returns the code from --code, --file, or stdin when fallback is
// set and neither flag was given. ok is false when there was no source.
func (o *SnippetOptions) readCode(cmd *cobra.Command, stdinFallback bool) (code string, ok bool, err error) {
	switch {
	case cmd.Flags().Changed("code"):
		return o.Code, true, nil
	case o.File == "-":
		return readAll(cmd.InOrStdin())
	case o.File != "":
		b, err := os.ReadFile(o.File)
		if err != nil {
			return "", false, usageError("reading %s: %v", o.File, err)
		}
		return string(b), true, nil
	case stdinFallback:
		return readAll(cmd.InOrStdin())
	default:
		return "", false, nil
	}
}

func readAll(r io.Reader) (string, bool, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", false, usageError("reading stdin: %v", err)
	}
	return string(b), true, nil
}

// normalizeTags applies the shell's tag convention: trimmed labels
// joined with ", ".
func normalizeTags(tags string) string {
	return model.JoinTags(model.SplitTags(tags))
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnippetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new snippet",
		Long: `Store a new snippet and print its id.

Code comes from --code, --file, or stdin:
  snippets add --title "http server" --language go --tags "net, web" -f main.go
  pbpaste | snippets add --title "query" --language sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runAdd(opts *SnippetOptions, cmd *cobra.Command) error {
	if opts.Title == "" {
		return usageError("--title is required")
	}
	if opts.Language == "" {
		return usageError("--language is required")
	}
	code, _, err := opts.readCode(cmd, true)
	if err != nil {
		return err
	}

	return opts.withApp(func(a *app) error {
		id, err := a.commands.Create(cmd.Context(), opts.Title, code, opts.Language, normalizeTags(opts.Tags))
		if err != nil {
			return failure(err)
		}
		return opts.formatter(cmd).Success(map[string]int64{"id": id}, renderLine("created #%d", id))
	})
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnippetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a snippet",
		Long: `Change a stored snippet. Fields without a flag keep their current value.

  snippets edit 3 --title "better name"
  snippets edit 3 -f - < main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd, args[0])
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runEdit(opts *SnippetOptions, cmd *cobra.Command, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	code, codeGiven, err := opts.readCode(cmd, false)
	if err != nil {
		return err
	}

	return opts.withApp(func(a *app) error {
		all, err := a.commands.List(cmd.Context())
		if err != nil {
			return failure(err)
		}
		current, ok := findSnippet(all, id)
		if !ok {
			return NewExitError(ExitFailure, fmt.Sprintf("snippet not found with id %d", id))
		}

		if cmd.Flags().Changed("title") {
			current.Title = opts.Title
		}
		if cmd.Flags().Changed("language") {
			current.Language = opts.Language
		}
		if cmd.Flags().Changed("tags") {
			current.Tags = normalizeTags(opts.Tags)
		}
		if codeGiven {
			current.Code = code
		}

		if err := a.commands.Update(cmd.Context(), id, current.Title, current.Code, current.Language, current.Tags); err != nil {
			return failure(err)
		}
		return opts.formatter(cmd).Success(map[string]int64{"id": id}, renderLine("updated #%d", id))
	})
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a snippet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(func(a *app) error {
				if err := a.commands.Delete(cmd.Context(), id); err != nil {
					return failure(err)
				}
				return rootOpts.formatter(cmd).Success(map[string]int64{"id": id}, renderLine("deleted #%d", id))
			})
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find snippets by title, code or tags",
		Long: `Find snippets whose title, code or tags contain the query.

Matching ignores ASCII case. "%" and "_" in the query act as wildcards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(func(a *app) error {
				found, err := a.commands.Search(cmd.Context(), args[0])
				if err != nil {
					return failure(err)
				}
				return rootOpts.formatter(cmd).Success(found, renderSnippets(found))
			})
		},
	}
}

// NewFavoriteCommand creates the fav command.
func NewFavoriteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle a snippet's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(func(a *app) error {
				favorite, err := a.commands.ToggleFavorite(cmd.Context(), id)
				if err != nil {
					return failure(err)
				}

				state := "no longer a favorite"
				if favorite {
					state = "now a favorite"
				}
				data := struct {
					ID         int64 `json:"id"`
					IsFavorite bool  `json:"is_favorite"`
				}{id, favorite}
				return rootOpts.formatter(cmd).Success(data, renderLine("#%d is %s", id, state))
			})
		},
	}
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(func(a *app) error {
				all, err := a.commands.List(cmd.Context())
				if err != nil {
					return failure(err)
				}
				tags := model.CollectTags(all)
				if tags == nil {
					tags = []string{}
				}
				return rootOpts.formatter(cmd).Success(tags, func(w io.Writer) {
					for _, t := range tags {
						fmt.Fprintln(w, t)
					}
				})
			})
		},
	}
}

// NewLanguagesCommand creates the languages command. It does not touch the
// store.
func NewLanguagesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the suggested languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(model.KnownLanguages, func(w io.Writer) {
				for _, l := range model.KnownLanguages {
					fmt.Fprintf(w, "%-10s %s\n", l.Value, l.Label)
				}
			})
		},
	}
}

func registerLanguageCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("language", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range model.LanguageValues() {
			if strings.HasPrefix(v, toComplete) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, usageError("invalid snippet id %q", raw)
	}
	return id, nil
}

func findSnippet(snippets []model.Snippet, id int64) (model.Snippet, bool) {
	for _, s := range snippets {
		if s.ID == id {
			return s, true
		}
	}
	return model.Snippet{}, false
}
