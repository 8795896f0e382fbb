package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dnaas-fabric/fabricbd/internal/deploy"
	"github.com/dnaas-fabric/fabricbd/internal/transport"
)

var deployExecute bool

var deployCmd = &cobra.Command{
	Use:   "deploy <deployment-id>",
	Short: "Stage, commit-check, commit, and verify a synthesized deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeploy(args[0])
	},
}

func init() {
	deployCmd.Flags().BoolVarP(&deployExecute, "execute", "x", false, "execute the deployment (default: print the plan only)")
}

func runDeploy(id string) error {
	ctx := context.Background()
	dep, ok, err := app.store.GetDeployment(ctx, id)
	if err != nil {
		return fmt.Errorf("loading deployment: %w", err)
	}
	if !ok {
		return fmt.Errorf("no such deployment: %s", id)
	}

	if !deployExecute {
		printDeploymentPlan(&dep)
		fmt.Println("dry run; pass -x to execute")
		return nil
	}

	if !confirmExecution(&dep) {
		fmt.Println("aborted")
		return nil
	}

	creds := make(map[string]transport.Credentials)
	for _, device := range dep.DeviceOrder() {
		creds[device] = transport.Credentials{
			Host:     device,
			Port:     app.settings.SSHPort,
			User:     app.settings.SSHUser,
			Password: app.settings.SSHPassword,
		}
	}
	pool := transport.NewSSHPool(creds, app.settings.DialTimeout, app.settings.CommandTimeout)
	orch := deploy.NewOrchestrator(pool)
	orch.Timeouts = deploy.Timeouts{
		Exec:       app.settings.CommandTimeout,
		Device:     app.settings.DeviceTimeout,
		Deployment: app.settings.DeploymentTimeout,
	}

	runErr := orch.Run(ctx, &dep)
	if putErr := app.store.PutDeployment(ctx, dep); putErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist final deployment state: %v\n", putErr)
	}
	if runErr != nil {
		return fmt.Errorf("deployment %s ended in state %s: %w", dep.ID, dep.State, runErr)
	}

	fmt.Printf("deployment %s reached %s\n", dep.ID, dep.State)
	return nil
}

func printDeploymentPlan(dep *deploy.Deployment) {
	fmt.Printf("deployment %s for service %q, state %s:\n", dep.ID, dep.ServiceName, dep.State)
	for _, c := range dep.Changes {
		fmt.Printf("  %s:\n", c.Device)
		for _, cmd := range c.Forward {
			fmt.Printf("    %s\n", cmd)
		}
	}
}

// confirmExecution prompts on the controlling terminal before sending any
// commands, unless running non-interactively (no TTY on stdin).
func confirmExecution(dep *deploy.Deployment) bool {
	printDeploymentPlan(dep)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	fmt.Printf("execute the above against %d device(s)? [y/N] ", len(dep.DeviceOrder()))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
