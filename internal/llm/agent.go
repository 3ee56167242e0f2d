package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentUserID = "musecareer"

// AgentClient runs each prompt through an ADK llm agent. Every call gets its
// own session which is deleted afterwards, so no history carries over.
type AgentClient struct {
	name        string
	instruction string
	model       model.LLM
	sessions    session.Service
}

func NewAgentClient(ctx context.Context, apiKey, modelName, agentName, instruction string) (*AgentClient, error) {
	m, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}
	return &AgentClient{
		name:        agentName,
		instruction: instruction,
		model:       m,
		sessions:    session.InMemoryService(),
	}, nil
}

func (c *AgentClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	analyzer, err := llmagent.New(llmagent.Config{
		Name:                  c.name,
		Model:                 c.model,
		Description:           "Analyze CV",
		Instruction:           c.instruction,
		GenerateContentConfig: generateConfig(opts),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent: %v", err)
	}
	r, err := runner.New(runner.Config{
		AppName:        c.name,
		Agent:          analyzer,
		SessionService: c.sessions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create runner: %w", err)
	}

	created, err := c.sessions.Create(ctx, &session.CreateRequest{
		AppName:   c.name,
		UserID:    agentUserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	sess := created.Session
	defer c.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   sess.AppName(),
		UserID:    sess.UserID(),
		SessionID: sess.ID(),
	})

	stream := r.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", upstreamFromGenAI(err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", &UpstreamError{Body: "empty agent response"}
	}
	return output, nil
}
