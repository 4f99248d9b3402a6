package shipment

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/model"
)

// maxConcurrentDetails bounds the detail requests show sends at once.
const maxConcurrentDetails = 4

func parseIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, cli.Exit("a shipment id is required", 2)
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
		if err != nil || id <= 0 {
			return nil, cli.Exit(fmt.Sprintf("invalid shipment id %q", arg), 2)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func show(ctx context.Context, deps CommandDeps, ids []int64, out io.Writer) error {
	details := make([]*model.ShipmentDetail, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDetails)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			d, err := deps.Dashboard.Detail(gctx, id)
			if err != nil {
				return errors.Wrapf(err, "shipment #%d", id)
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, d := range details {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

func execute(ctx context.Context, deps CommandDeps, k command.Kind, id int64, confirmer command.Confirmer, out io.Writer) error {
	msg, err := deps.Dashboard.Execute(ctx, k, id, confirmer)
	if errors.Is(err, command.ErrNotConfirmed) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(out, msg)
	return nil
}
