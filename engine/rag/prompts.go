package rag

import "strings"

// PromptTemplate renders {context} and {question} placeholders.
type PromptTemplate struct {
	text string
}

// Render substitutes both placeholders.
func (p PromptTemplate) Render(contextText, question string) string {
	return strings.NewReplacer(
		"{context}", contextText,
		"{question}", question,
	).Replace(p.text)
}

// generalPrompt answers in polished prose from retrieved product context.
var generalPrompt = PromptTemplate{text: `당신은 고급 초콜릿 전문 도우미입니다.

아래 제품 정보를 참고하여 **간결하고 품격 있는 문장**으로 사용자 질문에 답변해 주세요.

📦 제품 정보:
{context}

❓ 질문:
{question}

🧾 답변:
`}

// productNamesPrompt asks for a bare list of product names.
var productNamesPrompt = PromptTemplate{text: `당신은 초콜릿 제품 이름을 정리해주는 도우미입니다.

아래 정보를 참고하여 **제품명만** 목록으로 보여 주세요.

📦 제품 정보:
{context}

❓ 질문:
{question}

🧾 응답 (제품명만):
`}
