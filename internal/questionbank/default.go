package questionbank

import "progressive-quiz/internal/domain"

// Default returns the built-in question bank.
func Default() domain.Bank {
	return domain.Bank{
		domain.Beginner: {
			{
				ID:             "b1",
				Text:           "Which of the following is the correct way to declare a variable in C?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"var x = 10;", "int x = 10;", "x = 10;", "declare x = 10;"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "b2",
				Text:           "In Python, which data types are mutable? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"List", "Tuple", "Dictionary", "String", "Set"},
				CorrectAnswers: []int{0, 2, 4},
			},
			{
				ID:             "b3",
				Text:           "What is the correct syntax for a for loop in C?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"for (i = 0; i < 10; i++)", "for i in range(10):", "for (int i = 0; i < 10; i++)", "for i = 0 to 10"},
				CorrectAnswers: []int{2},
			},
			{
				ID:             "b4",
				Text:           "Which Python function is used to get the length of a list?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"length()", "size()", "len()", "count()"},
				CorrectAnswers: []int{2},
			},
			{
				ID:             "b5",
				Text:           "What are valid ways to create a function in Python? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"def function_name():", "function function_name() {}", "lambda x: x + 1", "def function_name(param):"},
				CorrectAnswers: []int{0, 2, 3},
			},
		},
		domain.Intermediate: {
			{
				ID:             "i1",
				Text:           "Which ES6 feature allows you to extract values from arrays or objects?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"Spread operator", "Destructuring", "Template literals", "Arrow functions"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "i2",
				Text:           "Which methods can be used to select DOM elements in JavaScript? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"document.getElementById()", "document.querySelector()", "document.getElementsByClassName()", "document.querySelectorAll()"},
				CorrectAnswers: []int{0, 1, 2, 3},
			},
			{
				ID:             "i3",
				Text:           "In Java, what keyword is used to inherit from a class?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"implements", "extends", "inherits", "super"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "i4",
				Text:           "What are characteristics of polymorphism in OOP? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"Method overriding", "Method overloading", "Same interface, different implementations", "Multiple inheritance"},
				CorrectAnswers: []int{0, 1, 2},
			},
			{
				ID:             "i5",
				Text:           "Which JavaScript method creates a new array with all elements that pass a test?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"map()", "filter()", "reduce()", "forEach()"},
				CorrectAnswers: []int{1},
			},
		},
		domain.Advanced: {
			{
				ID:             "a1",
				Text:           "Which TypeScript utility type makes all properties optional?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"Required<T>", "Partial<T>", "Pick<T, K>", "Omit<T, K>"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "a2",
				Text:           "Which React hooks manage component state and lifecycle? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"useState", "useEffect", "useContext", "useReducer", "useMemo"},
				CorrectAnswers: []int{0, 1, 3},
			},
			{
				ID:             "a3",
				Text:           "In Node.js, what is the correct way to import a module using ES6 syntax?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"const fs = require(\"fs\")", "import fs from \"fs\"", "import * as fs from \"fs\"", "import { fs } from \"fs\""},
				CorrectAnswers: []int{2},
			},
			{
				ID:             "a4",
				Text:           "Which are valid ways to handle asynchronous operations in JavaScript? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"Callbacks", "Promises", "async/await", "Generators"},
				CorrectAnswers: []int{0, 1, 2, 3},
			},
			{
				ID:             "a5",
				Text:           "What does the useEffect hook's dependency array control?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"When the component mounts", "When the effect runs", "What values the effect can access", "When the component unmounts"},
				CorrectAnswers: []int{1},
			},
		},
		domain.Master: {
			{
				ID:             "m1",
				Text:           "Which SQL clause is used to filter groups of rows?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"WHERE", "HAVING", "GROUP BY", "ORDER BY"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "m2",
				Text:           "Which React optimization techniques prevent unnecessary re-renders? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"React.memo", "useMemo", "useCallback", "useState", "PureComponent"},
				CorrectAnswers: []int{0, 1, 2, 4},
			},
			{
				ID:             "m3",
				Text:           "In Next.js, what does SSG stand for?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"Server-Side Generation", "Static Site Generation", "Server-Side Rendering", "Single Site Generation"},
				CorrectAnswers: []int{1},
			},
			{
				ID:             "m4",
				Text:           "Which Django REST framework components handle API requests? (Select all that apply)",
				Mode:           domain.MultipleAnswer,
				Options:        []string{"Serializers", "ViewSets", "Models", "Permissions"},
				CorrectAnswers: []int{0, 1, 3},
			},
			{
				ID:             "m5",
				Text:           "In Express.js, what is middleware used for?",
				Mode:           domain.SingleAnswer,
				Options:        []string{"Database connections only", "Processing requests and responses", "Template rendering only", "Static file serving only"},
				CorrectAnswers: []int{1},
			},
		},
	}
}
