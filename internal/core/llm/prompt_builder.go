package llm

import (
	"fmt"
	"strings"
)

// Tone values accepted by the chatbot settings
const (
	ToneFormal   = "formal"
	ToneCasual   = "casual"
	ToneFriendly = "friendly"
)

const personaPreamble = "Anda adalah asisten customer service untuk sebuah usaha kecil di Indonesia. Selalu jawab dalam Bahasa Indonesia."

var toneInstructions = map[string]string{
	ToneFormal:   "Gunakan bahasa yang sopan dan formal. Sapa pelanggan dengan \"Bapak/Ibu\".",
	ToneCasual:   "Gunakan bahasa santai sehari-hari, boleh memakai kata seperti \"kak\" atau \"yuk\".",
	ToneFriendly: "Gunakan bahasa yang ramah dan hangat, tetap sopan, boleh sesekali memakai emoji.",
}

// BusinessContext adalah profil usaha yang disisipkan ke system prompt
type BusinessContext struct {
	BusinessName string
	Description  string
	Personality  string
	Tone         string
	Hours        string

	// Knowledge is the formatted knowledge-base excerpt, may be empty
	Knowledge string
}

// ToneInstruction returns the instruction for tone, defaulting to friendly
func ToneInstruction(tone string) string {
	if s, ok := toneInstructions[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return s
	}
	return toneInstructions[ToneFriendly]
}

// BuildSystemPrompt membuat system prompt dari profil usaha
func BuildSystemPrompt(bc BusinessContext, includeKnowledge bool) string {
	var sb strings.Builder

	sb.WriteString(personaPreamble)
	sb.WriteString("\n")
	sb.WriteString(ToneInstruction(bc.Tone))
	sb.WriteString("\n\n")

	if bc.BusinessName != "" {
		sb.WriteString(fmt.Sprintf("Nama usaha: %s\n", bc.BusinessName))
	}
	if bc.Description != "" {
		sb.WriteString(fmt.Sprintf("Tentang usaha: %s\n", bc.Description))
	}
	if bc.Personality != "" {
		sb.WriteString(fmt.Sprintf("Kepribadian asisten: %s\n", bc.Personality))
	}
	if bc.Hours != "" {
		sb.WriteString(fmt.Sprintf("Jam operasional: %s\n", bc.Hours))
	}

	if includeKnowledge && strings.TrimSpace(bc.Knowledge) != "" {
		sb.WriteString("\n=== INFORMASI RELEVAN ===\n")
		sb.WriteString(bc.Knowledge)
		sb.WriteString("\n")
	}

	sb.WriteString("\nInstruksi:\n")
	sb.WriteString("- Jawab singkat dan jelas, cocok untuk pesan WhatsApp\n")
	sb.WriteString("- Gunakan informasi di atas untuk menjawab pertanyaan\n")
	sb.WriteString("- Jika tidak tahu, katakan dengan jujur dan tawarkan untuk dihubungkan ke CS\n")
	sb.WriteString("- Jangan membuat informasi yang tidak ada\n")

	return sb.String()
}
