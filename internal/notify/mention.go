package notify

import "strings"

// resolveMentions replaces every exact <@username> token with the provider's
// <@id> form for each configured user. Usernames outside the map and partial
// matches are left verbatim.
func resolveMentions(content string, users map[string]string) string {
	if len(users) == 0 || !strings.Contains(content, "<@") {
		return content
	}
	for username, id := range users {
		content = strings.ReplaceAll(content, "<@"+username+">", "<@"+id+">")
	}
	return content
}
