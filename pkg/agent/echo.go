package agent

import (
	"context"
	"fmt"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

// EchoCapability is the capability name advertised by the echo agent.
const EchoCapability = "echo"

// EchoExecutor is the development agent: it echoes back the "text" parameter.
type EchoExecutor struct{}

// Execute implements Executor.
func (EchoExecutor) Execute(_ context.Context, task Task) (map[string]any, error) {
	text, _ := task.Parameters["text"].(string)
	return map[string]any{"message": fmt.Sprintf("Echo: %s", text)}, nil
}

// EchoAgent builds the descriptor for the development echo agent.
func EchoAgent() *models.Agent {
	return &models.Agent{
		AgentID:     "echo-agent",
		Name:        "Echo",
		Description: "Development agent that echoes its input back",
		Capabilities: []models.Capability{
			{Name: EchoCapability, Description: "Return the text parameter prefixed with Echo:"},
		},
		Status: models.AgentStatusAvailable,
	}
}
