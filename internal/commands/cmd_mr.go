package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/desk"
)

type MRCmd struct {
	flags *Flags
	app   *desk.App

	// flags
	jsonOutput bool
	filter     review.MRFilter
	grade      string
	tags       []string
}

func NewMRCmd(flags *Flags, app *desk.App) *MRCmd {
	return &MRCmd{flags: flags, app: app}
}

func (cmd *MRCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "mr",
		Usage: "Merge request catalog commands",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List catalog merge requests",
				UsageText: "reviewdesk mr ls [--type bug] [--min 1] [--max 5] [--tag go] [--limit 20]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "merge request type", Destination: &cmd.filter.Type},
					&cli.IntFlag{Name: "min", Usage: "minimum complexity points", Destination: &cmd.filter.MinComplexity},
					&cli.IntFlag{Name: "max", Usage: "maximum complexity points", Destination: &cmd.filter.MaxComplexity},
					&cli.StringFlag{Name: "tag", Usage: "stack tag", Destination: &cmd.filter.StackTag},
					&cli.IntFlag{Name: "limit", Usage: "maximum results", Destination: &cmd.filter.Limit},
					jsonFlag,
				},
				Action: cmd.runList,
			},
			{
				Name:      "recommend",
				Usage:     "Recommend merge requests for a candidate grade",
				UsageText: "reviewdesk mr recommend --grade middle [--tag go --tag sql]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "grade", Aliases: []string{"g"}, Usage: "junior, middle or senior", Required: true, Destination: &cmd.grade},
					&cli.StringSliceFlag{Name: "tag", Usage: "stack tag (repeatable)", Destination: &cmd.tags},
					jsonFlag,
				},
				Action: cmd.runRecommend,
			},
			{
				Name:          "assign",
				Usage:         "Assign merge requests to a session",
				UsageText:     "reviewdesk mr assign <session-id> <mr-id>...",
				ShellComplete: SessionIDCompleter(cmd.app),
				Action:        cmd.runAssign,
			},
		},
	})
	return app
}

func (cmd *MRCmd) runList(ctx context.Context, c *cli.Command) error {
	mrs, total, err := cmd.app.MRs.List(ctx, cmd.filter)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return writeJSON(c.Root().Writer, struct {
			Total int                   `json:"total"`
			Items []review.MergeRequest `json:"items"`
		}{Total: total, Items: mrs})
	}

	if err := writeMRs(c, mrs); err != nil {
		return err
	}
	if total > len(mrs) {
		infof(c, "Showing %d of %d", len(mrs), total)
	}
	return nil
}

func (cmd *MRCmd) runRecommend(ctx context.Context, c *cli.Command) error {
	mrs, err := cmd.app.MRs.Recommend(ctx, cmd.grade, cmd.tags)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return writeJSON(c.Root().Writer, mrs)
	}
	return writeMRs(c, mrs)
}

func (cmd *MRCmd) runAssign(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	mrIDs := c.Args().Tail()
	if len(mrIDs) == 0 {
		return fmt.Errorf("at least one merge request id is required")
	}

	if err := cmd.app.MRs.Assign(ctx, id, mrIDs); err != nil {
		return err
	}

	successf(c, "Assigned %d merge request(s) to session %d", len(mrIDs), id)
	return nil
}

func writeMRs(c *cli.Command, mrs []review.MergeRequest) error {
	if len(mrs) == 0 {
		warnf(c, "No merge requests found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tTYPE\tPOINTS\tSTACK")
	for _, mr := range mrs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			mr.ID, mr.Title, mr.Type, mr.ComplexityPoints, strings.Join(mr.StackTags, ","))
	}
	return w.Flush()
}
