package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You are an expert assistant. Always answer concisely, " +
	"cite sources (page numbers), and use a friendly, professional tone."

const docQATemplate = `Given the following context chunks from a document, answer the user's question. Cite page numbers in your answer.

Context:
{context}

Question: {question}`

// renderDocQA builds the summarization messages through the eino prompt
// component so prompt callbacks fire like everywhere else in the graph.
func renderDocQA(ctx context.Context, contextBlock, question string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(docQATemplate),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"context":  contextBlock,
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("render doc QA prompt: %w", err)
	}
	return msgs, nil
}
