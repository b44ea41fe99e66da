package agent

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

const transferToolPrefix = "transfer_to_"

// Agent is one node of the agent tree: a system prompt plus the tools it may
// call and the sub-agents it may hand off to.
type Agent struct {
	Name        string
	Instruction string
	Tools       []AgentTool
	SubAgents   []*Agent
}

// find walks the tree looking for an agent by name.
func (a *Agent) find(name string) *Agent {
	if a.Name == name {
		return a
	}
	for _, sub := range a.SubAgents {
		if found := sub.find(name); found != nil {
			return found
		}
	}
	return nil
}

// transferTool is the synthetic tool exposed for each sub-agent. Calling it
// never runs anything itself; the runner intercepts the name and switches
// the active agent.
type transferTool struct {
	target *Agent
}

type transferToolInput struct{}

func (t transferTool) Name() string {
	return transferToolPrefix + t.target.Name
}

func (t transferTool) Description() string {
	return fmt.Sprintf("Hands the conversation over to the %s agent", t.target.Name)
}

func (t transferTool) Call(ctx context.Context, input string) (string, error) {
	return fmt.Sprintf("Transferred to %s.", t.target.Name), nil
}

func (t transferTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[transferToolInput]()
}
