// Package cli implements the interactive gophtasks command line client.
//
// The REPL reads one command per line. Anonymous users may register, login,
// ask for help or exit; once logged in the task commands become available:
//
//	add <text>             create a task
//	list                   list tasks
//	done <id>              mark a task completed
//	undone <id>            mark a task not completed
//	edit <id> <text>       change a task description
//	rm <id>                delete a task
//	attach <id> <file>     upload a file as the task attachment
//	url <id>               print a download link for the attachment
//	me                     show the current user
//	logout                 forget the stored session
//
// Passwords are read without echo and wiped after use. The session is kept
// in a local SQLite file so a restart keeps the login until the token expires.
package cli
