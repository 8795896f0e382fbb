package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:       "show services|topology|deployments",
	Short:     "Inspect the current topology, services, or deployments on record",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"services", "topology", "deployments"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "services":
			return showServices()
		case "topology":
			return showTopology()
		case "deployments":
			return showDeployments()
		}
		return nil
	},
}

func showServices() error {
	ctx := context.Background()
	services, err := app.store.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("listing services: %w", err)
	}
	if app.jsonOutput {
		return printJSON(services)
	}
	if len(services) == 0 {
		fmt.Println("no consolidated services on record")
		return nil
	}
	for _, svc := range services {
		fmt.Printf("%-24s %-24s vlan=%-12s template=%-20s confidence=%.2f leaves=%d\n",
			svc.ID, svc.Name, svc.VLAN, svc.Template, svc.Confidence, len(svc.EndpointLeaves))
		for _, d := range svc.Diagnostics {
			fmt.Printf("    ! %s: %s\n", d.Kind, d.Message)
		}
	}
	return nil
}

func showTopology() error {
	ctx := context.Background()
	envelope, ok, err := app.store.LatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if !ok {
		fmt.Println("no topology snapshot on record")
		return nil
	}
	if app.jsonOutput {
		return printJSON(envelope)
	}
	fmt.Printf("snapshot taken %s: %d device(s), %d edge(s)\n", envelope.Taken, len(envelope.Devices), len(envelope.Edges))
	for _, d := range envelope.Devices {
		fmt.Printf("  %-24s role=%-12s confidence=%.2f rack=%s\n", d.Name, d.Role, d.RoleConfidence, d.Rack)
	}
	for _, e := range envelope.Edges {
		fmt.Printf("  %s/%s <-> %s/%s (%s)\n", e.DeviceA, e.IfaceA, e.DeviceB, e.IfaceB, e.Role)
	}
	return nil
}

func showDeployments() error {
	ctx := context.Background()
	deployments, err := app.store.ListDeployments(ctx)
	if err != nil {
		return fmt.Errorf("listing deployments: %w", err)
	}
	if app.jsonOutput {
		return printJSON(deployments)
	}
	if len(deployments) == 0 {
		fmt.Println("no deployments on record")
		return nil
	}
	for _, dep := range deployments {
		fmt.Printf("%-24s %-24s state=%-16s devices=%d\n", dep.ID, dep.ServiceName, dep.State, len(dep.Devices))
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
