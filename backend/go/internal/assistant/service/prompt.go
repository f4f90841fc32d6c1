package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"Concierge/backend/go/internal/intent"
	"Concierge/backend/go/internal/models"
)

// sharedRules 对所有人设生效。
var sharedRules = []string{
	"Answer only from the knowledge base above. If it does not cover the question, say so and offer to connect the user with the team.",
	"Use the user profile to personalize the answer when it is relevant.",
	"Keep the reply under 150 words.",
	"Stay consultative: end with one short question that moves the conversation forward.",
}

// RenderContext 渲染会话上下文块：先是 "key: value, " 形式的画像，换行后是最近 window 轮 "role: content" 历史。
func RenderContext(profile models.Profile, history []models.ConversationTurn, window int) string {
	var sb strings.Builder
	if len(profile) > 0 {
		sb.WriteString("User profile: ")
		for _, k := range profile.Keys() {
			fmt.Fprintf(&sb, "%s: %s, ", k, profile[k])
		}
		sb.WriteString("\n")
	}
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	if len(history) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
	}
	return sb.String()
}

// BuildSystemInstruction 组合人设、知识、会话上下文、画像与意图，生成系统指令。
func BuildSystemInstruction(p Persona, knowledge, conversation string, profile models.Profile, in intent.Intent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, %s for %s.\n\n", p.DisplayName, p.Role, p.Organization)

	sb.WriteString("KNOWLEDGE BASE:\n")
	if knowledge == "" {
		sb.WriteString("No specific knowledge was found for this question.\n")
	} else {
		sb.WriteString(knowledge + "\n")
	}

	sb.WriteString("\nCONVERSATION CONTEXT:\n")
	if conversation == "" {
		sb.WriteString("This is the start of the conversation.\n")
	} else {
		sb.WriteString(conversation)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil || len(profile) == 0 {
		profileJSON = []byte("{}")
	}
	fmt.Fprintf(&sb, "\nUSER PROFILE: %s\n", profileJSON)
	fmt.Fprintf(&sb, "DETECTED INTENT: %s\n\nRULES:\n", in)

	n := 1
	for _, rules := range [][]string{sharedRules, p.Rules} {
		for _, r := range rules {
			fmt.Fprintf(&sb, "%d. %s\n", n, r)
			n++
		}
	}
	return sb.String()
}
