package catalog

import "github.com/abhisek/edulearn/internal/quiz"

func init() {
	courses := seedCourses()
	tracks := seedTracks()
	if err := validate(courses, tracks); err != nil {
		panic(err)
	}
	c = build(courses, tracks)
}

func q(text string, answer int, options ...string) quiz.Question {
	return quiz.Question{Text: text, Options: options, CorrectIndex: answer}
}

func seedCourses() []Course {
	return []Course{
		{
			ID:    "web",
			Title: "MySQL Basics",
			Modules: []Module{
				{
					Name: "Module 1",
					Lessons: []Lesson{
						{
							Title: "What is a Database?",
							Desc:  "Learn what a database is and why we use MySQL.",
							Cards: []Card{
								{"Definition", "A database stores data in tables so it is easy to find."},
								{"MySQL", "MySQL is a popular database system."},
							},
						},
						{
							Title: "Tables and Rows",
							Desc:  "Understand tables, rows, and columns.",
							Cards: []Card{
								{"Table", "A table holds related data."},
								{"Row & Column", "Rows are records, columns are fields."},
							},
						},
						{
							Title: "Basic SELECT",
							Desc:  "Read data from a table with SELECT.",
							Cards: []Card{
								{"SELECT *", "Get all rows from a table."},
								{"WHERE", "Filter rows by a condition."},
							},
						},
						{
							Title: "Insert Data",
							Desc:  "Add new rows with INSERT.",
							Cards: []Card{
								{"INSERT INTO", "Add data to a table."},
								{"Values", "Provide values for each column."},
							},
						},
					},
				},
				{
					Name: "Module 2",
					Lessons: []Lesson{
						{
							Title: "Update Data",
							Desc:  "Change existing rows with UPDATE.",
							Cards: []Card{
								{"UPDATE", "Modify data in a table."},
								{"WHERE", "Choose which rows to update."},
							},
						},
						{
							Title: "Delete Data",
							Desc:  "Remove rows with DELETE.",
							Cards: []Card{
								{"DELETE", "Remove rows from a table."},
								{"Be Careful", "Use WHERE to avoid deleting all rows."},
							},
						},
					},
				},
			},
		},
		{
			ID:    "backend",
			Title: "Python Basics",
			Modules: []Module{
				{
					Name: "Module 1",
					Lessons: []Lesson{
						{
							Title: "Hello Python",
							Desc:  "Run your first Python program.",
							Cards: []Card{
								{"print()", "Use print() to show output."},
								{"Strings", "Text values are strings."},
							},
						},
						{
							Title: "Variables",
							Desc:  "Store values in variables.",
							Cards: []Card{
								{"Assignment", "Use = to store a value."},
								{"Types", "Numbers, strings, and booleans."},
							},
						},
						{
							Title: "If Statements",
							Desc:  "Make decisions with if.",
							Cards: []Card{
								{"if", "Run code when condition is true."},
								{"else", "Run code when condition is false."},
							},
						},
					},
				},
			},
		},
		{
			ID:    "dashboard",
			Title: "React Basics",
			Modules: []Module{
				{
					Name: "Module 1",
					Lessons: []Lesson{
						{
							Title: "What is React?",
							Desc:  "Learn what React is used for.",
							Cards: []Card{
								{"UI Library", "React helps build user interfaces."},
								{"Components", "Small reusable UI pieces."},
							},
						},
						{
							Title: "JSX",
							Desc:  "Write HTML-like syntax in React.",
							Cards: []Card{
								{"JSX", "Looks like HTML but is JavaScript."},
								{"Single Root", "Components return one root element."},
							},
						},
					},
				},
			},
		},
	}
}

func seedTracks() []QuizTrack {
	return []QuizTrack{
		{
			ID:    "web",
			Title: "MySQL Basics",
			Quizzes: []QuizDef{
				{
					Title: "MySQL Basics Quiz", Module: "Module 1", Duration: "15 min",
					Questions: []quiz.Question{
						q("What does MySQL store data in?", 0, "Tables", "Pictures", "Emails", "Folders"),
						q("Which command reads data?", 0, "SELECT", "DELETE", "DROP", "UPDATE"),
						q("Which command adds data?", 0, "INSERT", "REMOVE", "CLOSE", "OPEN"),
					},
				},
				{
					Title: "MySQL Safety Quiz", Module: "Module 2", Duration: "12 min",
					Questions: []quiz.Question{
						q("Use WHERE with DELETE to avoid deleting?", 1, "Only one row", "All rows", "The table", "The database"),
						q("Which command changes existing data?", 0, "UPDATE", "SELECT", "SHOW", "CREATE"),
						q("Which keyword filters rows?", 0, "WHERE", "FROM", "ORDER", "JOIN"),
					},
				},
				{
					Title: "MySQL Review Quiz", Module: "Module 3", Duration: "20 min",
					Questions: []quiz.Question{
						q("A row in a table is also called a?", 0, "Record", "Column", "Index", "File"),
						q("Columns are also called?", 0, "Fields", "Rows", "Files", "Lines"),
						q("Which command removes a row?", 0, "DELETE", "SELECT", "SAVE", "OPEN"),
					},
				},
			},
		},
		{
			ID:    "backend",
			Title: "Python Basics",
			Quizzes: []QuizDef{
				{
					Title: "Python Basics Quiz", Module: "Module 1", Duration: "14 min",
					Questions: []quiz.Question{
						q("Which function prints text?", 0, "print()", "echo()", "show()", "write()"),
						q("Which symbol assigns a value?", 0, "=", "==", "=>", "::"),
					},
				},
				{
					Title: "Python Logic Quiz", Module: "Module 2", Duration: "16 min",
					Questions: []quiz.Question{
						q("Which keyword starts a condition?", 0, "if", "for", "def", "print"),
						q("Which keyword runs when condition is false?", 0, "else", "elif", "true", "end"),
					},
				},
			},
		},
		{
			ID:    "dashboard",
			Title: "React Basics",
			Quizzes: []QuizDef{
				{
					Title: "React Basics Quiz", Module: "Module 1", Duration: "10 min",
					Questions: []quiz.Question{
						q("React is mainly used to build?", 1, "Databases", "User Interfaces", "Emails", "Files"),
						q("A React piece is called a?", 0, "Component", "Packet", "Field", "Node"),
					},
				},
			},
		},
	}
}
