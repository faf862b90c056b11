package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/proving"
	"github.com/mpcith/ssith/shared"
	"github.com/mpcith/ssith/verifying"
)

func main() {
	single := flag.Bool("single", false, "run only the default parameter set")
	workers := flag.Int("workers", 0, "worker pool size (0 = NumCPU)")
	flag.Parse()

	cases := []config.Config{config.DefaultConfig()}
	if !*single {
		cases = append(cases,
			config.Config{Dimension: 64, Parties: 4, Prepared: 50, Executed: 32, ShareBits: 64},
			config.Config{Dimension: 128, Parties: 8, Prepared: 100, Executed: 43, ShareBits: 64},
			config.Config{Dimension: 256, Parties: 16, Prepared: 150, Executed: 32, ShareBits: 64},
		)
	}

	data := make([][]string, 0, len(cases))
	for i, cfg := range cases {
		log.Printf("case %v/%v starting...", i+1, len(cases))

		witness, instance, err := shared.NewRandomPair(rand.Reader, cfg)
		if err != nil {
			log.Fatal(err)
		}

		opts := []proving.OptionFunc{}
		if *workers > 0 {
			opts = append(opts, proving.WithWorkers(*workers))
		}
		prover, err := proving.NewProver(cfg, instance, witness, opts...)
		if err != nil {
			log.Fatal(err)
		}

		t := time.Now()
		proof, err := prover.Generate(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		proveTime := time.Since(t)

		t = time.Now()
		if err := verifying.Verify(cfg, instance, proof); err != nil {
			log.Fatal(err)
		}
		verifyTime := time.Since(t)

		encoded, err := proof.Bytes()
		if err != nil {
			log.Fatal(err)
		}

		data = append(data, []string{
			strconv.Itoa(int(cfg.Dimension)),
			strconv.Itoa(int(cfg.Parties)),
			fmt.Sprintf("%d/%d", cfg.Executed, cfg.Prepared),
			proveTime.Round(time.Microsecond).String(),
			verifyTime.Round(time.Microsecond).String(),
			bytefmt.ByteSize(uint64(len(encoded))),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"n", "parties", "executed", "prove", "verify", "proof size"})
	table.AppendBulk(data)
	table.Render()
}
