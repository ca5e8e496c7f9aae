package build

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// stage4TimetableFetch implements spec.md §4.5: for each configured
// line's curated terminal stations, fetch the timetable and collect it
// for stage 5 to union. The on-disk cache slot for a line is
// overwritten by whichever terminal fetch finishes last ("last-writer-
// wins across terminals" per spec.md §4.5); the in-memory collection
// this stage builds keeps every terminal's response so stage 5 can
// union branches across all of them.
func stage4TimetableFetch(ctx context.Context, p *Pipeline) error {
	type job struct {
		lineID     string
		terminalID string
	}
	var jobs []job
	for lineID, terminals := range TerminalStations {
		if !p.hasLine(lineID) {
			continue
		}
		for _, t := range terminals {
			jobs = append(jobs, job{lineID: lineID, terminalID: t})
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.Config.Concurrency.Timetable)

	for _, j := range jobs {
		j := j
		group.Go(func() error {
			resp, err := p.Client.Timetable(gctx, j.lineID, j.terminalID)
			if err != nil {
				p.recordWarning("stage4", fmt.Sprintf("timetable %s from %s: %v", j.lineID, j.terminalID, err))
				return nil
			}
			p.timetablesMu.Lock()
			p.timetables[j.lineID] = append(p.timetables[j.lineID], resp)
			p.timetablesMu.Unlock()

			if p.Cache != nil {
				if perr := p.Cache.PutJSON("timetable:"+j.lineID, resp); perr != nil {
					log.Printf("stage4: per-line cache write failed for %s: %v", j.lineID, perr)
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("stage4: %w", err)
	}
	log.Printf("stage4: fetched timetables for %d line/terminal jobs", len(jobs))
	return nil
}
