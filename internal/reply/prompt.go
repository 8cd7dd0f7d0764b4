package reply

import "fmt"

// BuildPrompt renders the instructions sent to the model.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`You are a friendly marine biologist or a local resident living in %[1]s.
A 7-9 year old child named %[2]s has sent a "Magic Bubble" message through the %[3]s.

The child's message/question is: %[4]q

Please write a reply.
1. Be enthusiastic, kind, and educational.
2. Keep the language simple for a 7-year-old.
3. Specifically answer their question if they asked one.
4. Mention one cool thing about the ocean environment at %[1]s.
5. Keep the reply under 100 words.

Also provide a separate "Fun Fact" about the %[3]s or the marine life there.

Return the response as a JSON object with this structure:
{
  "location": %[1]q,
  "replyText": "The body of the letter...",
  "funFact": "Did you know? ..."
}`, req.EndLocation, req.SenderName, req.CurrentName, req.Letter)
}
