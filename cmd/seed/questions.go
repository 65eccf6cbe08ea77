package main

import "practicetests/services"

func abcd(a, b, c, d string) []services.OptionInput {
	return []services.OptionInput{
		{Text: a, Value: "A"},
		{Text: b, Value: "B"},
		{Text: c, Value: "C"},
		{Text: d, Value: "D"},
	}
}

var sampleQuestions = []services.QuestionInput{
	{
		Title:              "What is the term for a group of kittens?",
		Category:           "Cats",
		Difficulty:         "easy",
		Options:            abcd("Clowder", "Litter", "Kindle", "Pack"),
		CorrectAnswerValue: "B",
		Explanation:        "A group of kittens is called a litter. A clowder is a group of adult cats.",
	},
	{
		Title:              "How many lives are cats traditionally said to have?",
		Category:           "Cats",
		Difficulty:         "easy",
		Options:            abcd("Seven", "Eight", "Nine", "Ten"),
		CorrectAnswerValue: "C",
		Explanation:        "Mythically, a cat has nine lives.",
	},
	{
		Title:              "Which body part helps cats balance and communicate?",
		Category:           "Cats",
		Difficulty:         "easy",
		Options:            abcd("Tail", "Front paws", "Ears", "Whiskers"),
		CorrectAnswerValue: "A",
		Explanation:        "Cats use tails to balance and communicate mood and intent.",
	},
	{
		Title:              "What is the average lifespan of an indoor cat?",
		Category:           "Cats",
		Difficulty:         "medium",
		Options:            abcd("5-7 years", "10-12 years", "13-17 years", "20+ years"),
		CorrectAnswerValue: "C",
		Explanation:        "Indoor cats often live into their teens, commonly 13-17 years.",
	},
	{
		Title:              "What do cats use their whiskers for?",
		Category:           "Cats",
		Difficulty:         "easy",
		Options:            abcd("Smelling", "Hunting", "Sensing space and objects", "Tasting"),
		CorrectAnswerValue: "C",
		Explanation:        "Whiskers help cats sense space and nearby objects, especially in the dark.",
	},
	{
		Title:              "What sound indicates a cat is most likely content or greeting you?",
		Category:           "Cats",
		Difficulty:         "easy",
		Options:            abcd("Hissing", "Purring", "Growling", "Yowling"),
		CorrectAnswerValue: "B",
		Explanation:        "Purring is commonly a contentment sound.",
	},
	{
		Title:              "Which coat pattern is most common in domestic cats?",
		Category:           "Cats",
		Difficulty:         "medium",
		Options:            abcd("Calico", "Tabby", "Tortoiseshell", "Colorpoint"),
		CorrectAnswerValue: "B",
		Explanation:        "Tabby is one of the most common coat patterns across cat breeds.",
	},
}
