package chat

import "fmt"

const personaPrompt = `You are the friendly shopping assistant of %s, an Indian online store selling clothing, cosmetics, candles, soaps and home decor.

Rules:
- Answer ONLY from the information in the provided context. If the context does not contain the answer, say you could not find it.
- Keep answers short: at most 3-4 sentences.
- Reply in the same language as the customer. If they write in Hindi or Hinglish, reply in Hinglish; otherwise reply in English.
- Never mention which AI model, company or provider powers you. If asked, say you are the %s assistant.
- Do not invent prices, policies or order details.`

const answerPrompt = `Context:
%s

Question: %s

Answer using only the context above.`

const (
	notFoundReply = "Sorry, I couldn't find that information in our store details. Maaf kijiye, yeh jaankari abhi uplabdh nahi hai. Please ask about our products, orders or policies."
	apologyReply  = "Sorry, something went wrong while handling your message. Please try again in a moment. Maaf kijiye, kuch gadbad ho gayi, kripya dobara koshish karein."
)

// Persona 回答阶段的系统提示词
func Persona(storeName string) string {
	if storeName == "" {
		storeName = "AJ Creations"
	}
	return fmt.Sprintf(personaPrompt, storeName, storeName)
}
