// seed_attendance.go: standalone script to generate a sample attendance CSV
// and optionally score it through the Pulse API.
//
// Usage:
//
//	go run scripts/seed_attendance.go -out data/exemplo_presencas.csv -people 40 -end 2025-01-31
//	go run scripts/seed_attendance.go -api http://localhost:8700 -dry-run=false
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// profile produces the attendance days for one person, as offsets back from
// the end date (0 = end date).
type profile struct {
	name string
	days func(r *rand.Rand) []int
}

var profiles = []profile{
	{"steady", func(r *rand.Rand) []int { return pick(r, 0, 27, 10+r.IntN(6)) }},
	{"dropping", func(r *rand.Rand) []int {
		return append(pick(r, 14, 27, 6+r.IntN(4)), pick(r, 0, 13, r.IntN(3))...)
	}},
	{"absent", func(r *rand.Rand) []int { return pick(r, 15+r.IntN(8), 27, 2+r.IntN(3)) }},
	{"sporadic", func(r *rand.Rand) []int { return pick(r, 0, 27, 2+r.IntN(3)) }},
}

// pick returns n distinct offsets in [lo, hi].
func pick(r *rand.Rand, lo, hi, n int) []int {
	span := hi - lo + 1
	if n > span {
		n = span
	}
	perm := r.Perm(span)[:n]
	out := make([]int, n)
	for i, p := range perm {
		out[i] = lo + p
	}
	return out
}

func main() {
	outPath := flag.String("out", "", "write the CSV here (default stdout)")
	people := flag.Int("people", 40, "number of people to generate")
	endDate := flag.String("end", time.Now().UTC().Format(dateLayout), "last attendance date in the sample")
	seed := flag.Uint64("seed", 1, "random seed")
	dirty := flag.Bool("dirty", true, "append rows with blank ids and bad dates")
	apiURL := flag.String("api", "http://localhost:8700", "Pulse API base URL")
	dryRun := flag.Bool("dry-run", true, "only write the CSV, do not post it")
	flag.Parse()

	end, err := time.Parse(dateLayout, *endDate)
	if err != nil {
		log.Fatalf("parse -end: %v", err)
	}

	r := rand.New(rand.NewPCG(*seed, *seed))
	rows := generate(r, *people, end)
	if *dirty {
		rows = append(rows,
			[]string{"", end.Format(dateLayout)},
			[]string{"999", "31/02/2025"},
			[]string{"998", "sem data"},
		)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"aluno_id", "data"})
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, buf.Bytes(), 0o644); err != nil {
			log.Fatalf("write %s: %v", *outPath, err)
		}
		log.Printf("wrote %d rows for %d people to %s", len(rows), *people, *outPath)
	} else if *dryRun {
		_, _ = os.Stdout.Write(buf.Bytes())
	}

	if *dryRun {
		return
	}

	resp, err := http.Post(*apiURL+"/api/v1/scores?format=json", "text/csv", bytes.NewReader(buf.Bytes()))
	if err != nil {
		log.Fatalf("post scores: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("post scores: status %d: %s", resp.StatusCode, body)
	}
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		log.Fatalf("read response: %v", err)
	}
}

func generate(r *rand.Rand, people int, end time.Time) [][]string {
	var rows [][]string
	for i := 1; i <= people; i++ {
		id := fmt.Sprintf("%03d", i)
		p := profiles[r.IntN(len(profiles))]
		offsets := p.days(r)
		sort.Sort(sort.Reverse(sort.IntSlice(offsets)))
		for _, off := range offsets {
			rows = append(rows, []string{id, end.AddDate(0, 0, -off).Format(dateLayout)})
		}
		// Same-day duplicates are valid input.
		if len(offsets) > 0 && r.IntN(5) == 0 {
			rows = append(rows, []string{id, end.AddDate(0, 0, -offsets[0]).Format(dateLayout)})
		}
	}
	return rows
}
