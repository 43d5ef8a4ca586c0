package retrieval

import "github.com/austiecodes/vera/internal/types"

const expansionInstruction = "You are a first principle reasoning search query AI agent. " +
	"Your list of search queries will be ran on an embedding database of all your conversations " +
	"you have ever had with the user. With first principles create a Python list of queries to " +
	"search the embeddings database for any data that would be necessary to have access to in " +
	"order to correctly respond to the prompt. Your response must be a Python list with no syntax errors. " +
	"Do not explain anything and do not ever generate anything but a perfect syntax Python list"

const classificationInstruction = "You are an embedding classification AI agent. Your input will be a prompt and one embedded chunk of text. " +
	"You will not respond as an AI assistant. You only respond \"yes\" or \"no\". " +
	"Determine whether the context contains data that directly is related to the search query. " +
	"If the context is seemingly exactly what the search query needs, respond \"yes\" if it is anything but directly " +
	"related respond \"no\". Do not respond \"yes\" unless the context is highly relevant to the search query."

// expansionMessages builds the few-shot conversation asking for a list of
// search queries for prompt.
func expansionMessages(prompt string) []types.Message {
	return []types.Message{
		types.SystemMessage(expansionInstruction),
		types.UserMessage("Write an email to my car insurance company and create a pursuasive request for them to lower prices based on my good driving record"),
		types.AssistantMessage(`["What is the users name?", "What is the users current auto insurance provider?", "What is the users driving record?"]`),
		types.UserMessage("how can i convert the speak function in my llama3 python voice assistant to use pyttsx3 instead"),
		types.AssistantMessage(`["Llama3 voice assistant", "Python voice assistant", "openAI TTS", "openai speak", "text to speech python", "convert TTS to pyttsx3"]`),
		types.UserMessage(prompt),
	}
}

// classificationMessages builds the few-shot conversation asking whether
// candidate is relevant to query.
func classificationMessages(query, candidate string) []types.Message {
	return []types.Message{
		types.SystemMessage(classificationInstruction),
		types.UserMessage("SEARCH QUERY: What is the users name?\n\nEMBEDDED CONTEXT: You are Hoang. How can I help you today?"),
		types.AssistantMessage("yes"),
		types.UserMessage("SEARCH QUERY: Llama3 Python Voice Assistant \n\nEMBEDDED CONTEXT: Siri is a voice assistant developed by Apple Inc."),
		types.AssistantMessage("no"),
		types.UserMessage("SEARCH QUERY: " + query + " \n\nEMBEDDED CONTEXT: " + candidate),
	}
}
