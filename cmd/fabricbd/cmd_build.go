package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/deploy"
	"github.com/dnaas-fabric/fabricbd/internal/pathengine"
	"github.com/dnaas-fabric/fabricbd/internal/synth"
)

// intentFile is the JSON shape accepted by "fabricbd build". VLAN stays a
// string on the wire (synth.BuildIntent already treats it as one) so the
// caller can pass "100", "100:200", "100,200-210", or "1-4094" without a
// custom unmarshaler.
type intentFile struct {
	ServiceName  string            `json:"service_name"`
	Template     string            `json:"template"`
	VLAN         string            `json:"vlan"`
	Source       synth.Endpoint    `json:"source"`
	Destinations []synth.Endpoint  `json:"destinations"`
	Strategy     string            `json:"strategy,omitempty"`
	ManualPaths  map[string]string `json:"manual_paths,omitempty"`
}

var buildCmd = &cobra.Command{
	Use:   "build <intent.json>",
	Short: "Validate an intent, compute paths, and synthesize device commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(args[0])
	},
}

func runBuild(intentPath string) error {
	raw, err := os.ReadFile(intentPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", intentPath, err)
	}
	var in intentFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing intent: %w", err)
	}

	ctx := context.Background()
	envelope, ok, err := app.store.LatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if !ok {
		return fmt.Errorf("no topology snapshot available: run 'fabricbd discover' first")
	}
	snap := snapshotFromEnvelope(envelope)

	intent := synth.BuildIntent{
		ServiceName:  in.ServiceName,
		Template:     classify.Template(in.Template),
		VLAN:         in.VLAN,
		Source:       in.Source,
		Destinations: in.Destinations,
		Strategy:     pathengine.Strategy(in.Strategy),
		ManualPaths:  in.ManualPaths,
	}

	plan := pathengine.NewPlan()
	var paths []pathengine.Path
	if len(intent.Destinations) == 1 {
		path, err := plan.ComputeP2P(snap, intent.Source.Device, intent.Destinations[0].Device, app.settings.PerSpineCap)
		if err != nil {
			return fmt.Errorf("computing path: %w", err)
		}
		paths = []pathengine.Path{path}
	} else {
		dests := make([]string, 0, len(intent.Destinations))
		for _, d := range intent.Destinations {
			dests = append(dests, d.Device)
		}
		paths, err = plan.ComputeP2MP(snap, intent.Source.Device, dests, intent.Strategy, app.settings.PerSpineCap, intent.ManualPaths)
		if err != nil {
			return fmt.Errorf("computing paths: %w", err)
		}
	}

	existing, err := existingAssignments(ctx)
	if err != nil {
		return fmt.Errorf("loading existing assignments: %w", err)
	}

	changes, err := synth.NewSynthesizer().Synthesize(intent, snap, paths, existing)
	if err != nil {
		return fmt.Errorf("synthesizing configuration: %w", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	dep := deploy.NewDeployment(id, intent.ServiceName, changes)
	if err := app.store.PutDeployment(ctx, *dep); err != nil {
		return fmt.Errorf("persisting deployment: %w", err)
	}

	if app.jsonOutput {
		data, err := json.MarshalIndent(dep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("deployment %s planned for service %q across %d device(s):\n", dep.ID, dep.ServiceName, len(changes))
	for _, c := range changes {
		fmt.Printf("  %s:\n", c.Device)
		for _, cmd := range c.Forward {
			fmt.Printf("    %s\n", cmd)
		}
	}
	fmt.Printf("run 'fabricbd deploy %s' to stage, or add -x to execute\n", dep.ID)
	return nil
}

// existingAssignments derives the interface-to-service table consulted by
// synth's pre-checks from every previously consolidated service on record.
func existingAssignments(ctx context.Context) ([]synth.ExistingAssignment, error) {
	services, err := app.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	var out []synth.ExistingAssignment
	for _, svc := range services {
		for _, leaf := range svc.EndpointLeaves {
			for _, iface := range leaf.Interfaces {
				out = append(out, synth.ExistingAssignment{
					Device:      leaf.Device,
					Interface:   iface,
					ServiceName: svc.Name,
				})
			}
		}
	}
	return out, nil
}
