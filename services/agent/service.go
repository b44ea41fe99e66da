package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"coursegen/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxToolTurns bounds one chat turn: clarifications, handoffs and one
// generation fit well under this.
const maxToolTurns = 8

// toolUse is one tool invocation requested by the model.
type toolUse struct {
	ID    string
	Name  string
	Input string
}

// assistantTurn is a model response reduced to what the runner needs.
type assistantTurn struct {
	Text     string
	ToolUses []toolUse
}

type turnGenerator interface {
	generateTurn(ctx context.Context, system string, tools []anthropic.ToolUnionParam, messages []anthropic.MessageParam) (*assistantTurn, error)
}

// Service runs the agent tree: it drives the tool loop, switches the active
// agent on transfer tools, and intercepts generation tool outputs.
type Service struct {
	llm  turnGenerator
	root *Agent
}

func NewService(anthropicAPIKey string, root *Agent) *Service {
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))
	return &Service{
		llm:  &anthropicTurnGenerator{client: &client},
		root: root,
	}
}

// RunResult is the outcome of one chat turn: the extended transcript, the
// final assistant text, the agent that produced it, and the generation tool
// output when one ran.
type RunResult struct {
	Messages  []models.AgentMessage
	Answer    string
	Agent     string
	Generated *models.GenerativeToolOutput
}

// Run processes one user turn starting at startAgent (the root when empty or
// unknown).
func (s *Service) Run(ctx context.Context, startAgent string, messages []models.AgentMessage) (*RunResult, error) {
	current := s.root
	if startAgent != "" {
		if found := s.root.find(startAgent); found != nil {
			current = found
		} else {
			log.Printf("[WARN] Unknown start agent %q, falling back to %s", startAgent, s.root.Name)
		}
	}

	log.Printf("[INFO] Starting agent run with %d messages on agent %s", len(messages), current.Name)

	updated := make([]models.AgentMessage, len(messages))
	copy(updated, messages)

	var generated *models.GenerativeToolOutput
	answer := ""

	for turn := 0; turn < maxToolTurns; turn++ {
		tools := s.agentTools(current)
		response, err := s.llm.generateTurn(ctx, current.Instruction, buildAnthropicToolSpecs(tools), convertToAnthropicMessages(updated))
		if err != nil {
			log.Printf("[ERROR] Agent %s call failed: %v", current.Name, err)
			return nil, fmt.Errorf("agent %s call failed: %v", current.Name, err)
		}

		assistantMsg := models.AgentMessage{
			Role:    "assistant",
			Content: response.Text,
		}
		for _, use := range response.ToolUses {
			var arguments map[string]interface{}
			json.Unmarshal([]byte(use.Input), &arguments)
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, models.ToolCall{
				ID:        use.ID,
				Name:      use.Name,
				Arguments: arguments,
			})
		}
		updated = append(updated, assistantMsg)

		if len(response.ToolUses) == 0 {
			answer = response.Text
			break
		}

		for _, use := range response.ToolUses {
			result, next := s.executeToolUse(ctx, current, tools, use, &generated)
			if next != nil {
				current = next
			}
			updated = append(updated, models.AgentMessage{
				Role: "tool",
				ToolResults: []models.ToolResult{
					{ToolCallID: use.ID, Content: result},
				},
			})
		}
	}

	if answer == "" && generated != nil && generated.Completed {
		answer = "Document generated"
	}
	if answer == "" {
		log.Printf("[WARN] Agent run on %s ended without a final answer", current.Name)
		answer = "Je n'ai pas pu traiter votre demande, merci de réessayer."
	}

	log.Printf("[INFO] Agent run completed on agent %s (generated: %v)", current.Name, generated != nil)

	return &RunResult{
		Messages:  updated,
		Answer:    answer,
		Agent:     current.Name,
		Generated: generated,
	}, nil
}

// executeToolUse runs one requested tool. It returns the tool result text
// and, for transfer tools, the agent to switch to.
func (s *Service) executeToolUse(ctx context.Context, current *Agent, tools []AgentTool, use toolUse, generated **models.GenerativeToolOutput) (string, *Agent) {
	log.Printf("[INFO] Agent %s executing tool %s with arguments: %s", current.Name, use.Name, use.Input)

	if target := strings.TrimPrefix(use.Name, transferToolPrefix); target != use.Name {
		next := s.root.find(target)
		if next == nil {
			log.Printf("[ERROR] Transfer to unknown agent %q", target)
			return fmt.Sprintf("Error: unknown agent %s", target), nil
		}
		log.Printf("[INFO] Handing off from %s to %s", current.Name, next.Name)
		return fmt.Sprintf("Transferred to %s.", next.Name), next
	}

	tool, found := findTool(tools, use.Name)
	if !found {
		log.Printf("[ERROR] Tool %s not found on agent %s", use.Name, current.Name)
		return fmt.Sprintf("Error: tool %s not found", use.Name), nil
	}

	result, err := tool.Call(ctx, use.Input)
	if err != nil {
		log.Printf("[ERROR] Tool %s execution failed: %v", use.Name, err)
		return fmt.Sprintf("Error: %v", err), nil
	}
	log.Printf("[INFO] Tool %s execution result: %s", use.Name, result)

	if isGenerationTool(use.Name) {
		var output models.GenerativeToolOutput
		if err := json.Unmarshal([]byte(result), &output); err == nil && output.Agent != "" {
			*generated = &output
		}
	}

	return result, nil
}

// agentTools is the tool set offered to the model for one agent: its own
// tools, a transfer tool per sub-agent, and a way back to the root.
func (s *Service) agentTools(a *Agent) []AgentTool {
	tools := make([]AgentTool, 0, len(a.Tools)+len(a.SubAgents)+1)
	tools = append(tools, a.Tools...)
	for _, sub := range a.SubAgents {
		tools = append(tools, transferTool{target: sub})
	}
	if a != s.root {
		tools = append(tools, transferTool{target: s.root})
	}
	return tools
}

func findTool(tools []AgentTool, name string) (AgentTool, bool) {
	for _, tool := range tools {
		if tool.Name() == name {
			return tool, true
		}
	}
	return nil, false
}

func convertToAnthropicMessages(messages []models.AgentMessage) []anthropic.MessageParam {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			contentBlocks := []anthropic.ContentBlockParamUnion{}
			if msg.Content != "" {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}
			for _, toolCall := range msg.ToolCalls {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    toolCall.ID,
						Name:  toolCall.Name,
						Input: toolCall.Arguments,
					},
				})
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(contentBlocks...))
		case "tool":
			// Tool results go back as user messages with tool result blocks.
			toolResultBlocks := []anthropic.ContentBlockParamUnion{}
			for _, result := range msg.ToolResults {
				toolResultBlocks = append(toolResultBlocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: result.ToolCallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: result.Content}},
						},
					},
				})
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return anthropicMessages
}

func buildAnthropicToolSpecs(tools []AgentTool) []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam

	for _, tool := range tools {
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.GetAnthropicToolSpec(),
			},
		})
	}

	return toolSpecs
}

type anthropicTurnGenerator struct {
	client *anthropic.Client
}

func (g *anthropicTurnGenerator) generateTurn(ctx context.Context, system string, tools []anthropic.ToolUnionParam, messages []anthropic.MessageParam) (*assistantTurn, error) {
	logAnthropicRequest(messages, tools)

	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude4Sonnet20250514,
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  messages,
		Tools:     tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %v", err)
	}

	logAnthropicResponse(response)

	turn := &assistantTurn{}
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			turn.Text += block.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(block.Input)
			turn.ToolUses = append(turn.ToolUses, toolUse{
				ID:    block.ID,
				Name:  block.Name,
				Input: string(inputJSON),
			})
		}
	}

	return turn, nil
}

func logAnthropicRequest(messages []anthropic.MessageParam, tools []anthropic.ToolUnionParam) {
	log.Printf("[INFO] ========== Anthropic Request ==========")

	log.Printf("[INFO] Messages (%d total):", len(messages))
	for i, msg := range messages {
		log.Printf("[INFO]   [%d] Role: %s", i, msg.Role)
	}

	if len(tools) > 0 {
		log.Printf("[INFO] Available Tools (%d total):", len(tools))
		for i, tool := range tools {
			if tool.OfTool != nil {
				log.Printf("[INFO]   [%d] Name: %s", i, tool.OfTool.Name)
			}
		}
	} else {
		log.Printf("[INFO] No tools provided")
	}

	log.Printf("[INFO] =======================================")
}

func logAnthropicResponse(response *anthropic.Message) {
	log.Printf("[INFO] ========== Anthropic Response ==========")

	log.Printf("[INFO] Model: %s", response.Model)
	log.Printf("[INFO] StopReason: %s", response.StopReason)
	log.Printf("[INFO] Content blocks (%d total):", len(response.Content))

	toolCallCount := 0
	for i, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			log.Printf("[INFO]   [%d] Text: %s", i, block.Text)
		case anthropic.ToolUseBlock:
			toolCallCount++
			log.Printf("[INFO]   [%d] Tool Use: ID=%s, Name=%s, Input=%v", i, block.ID, block.Name, block.Input)
		}
	}

	if toolCallCount > 0 {
		log.Printf("[INFO] Total tool calls: %d", toolCallCount)
	} else {
		log.Printf("[INFO] No tool calls made")
	}

	log.Printf("[INFO] ========================================")
}
