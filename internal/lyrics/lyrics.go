// Package lyrics renders templated song lyrics for a learning topic. The
// templates stand in for a real lyric model; they keep music responses
// complete while composition happens upstream.
package lyrics

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitlePrefix is the naming convention for generated tracks. Status
// handlers use it to recover the topic from a track name.
const TitlePrefix = "Learning about "

// Title returns the display name for a track about a topic.
func Title(topic string) string {
	return TitlePrefix + topic
}

// TopicFromTitle reverses Title. The second return is false when the name
// does not follow the convention.
func TopicFromTitle(title string) (string, bool) {
	if strings.HasPrefix(title, TitlePrefix) {
		return title[len(TitlePrefix):], true
	}
	return "", false
}

// ForTopic renders lyrics about a topic in the flavor of a genre. Hip hop
// and country have dedicated templates; everything else shares a generic
// one. Genre matching tolerates "hip_hop", "hip-hop" and "hip hop".
func ForTopic(topic, genre string) string {
	display := cases.Title(language.Und).String(topic)
	switch normalizeGenre(genre) {
	case "hip hop":
		return fmt.Sprintf(`[Verse 1]
Listen up, let me tell you 'bout %[1]s
Knowledge flowing, can't nobody stop it
Breaking it down so your mind can process
Learning new things, that's how we progress

[Chorus]
%[2]s, yeah, that's what we're learning today
%[2]s, understand it in a whole new way
%[2]s, knowledge is the power we seek
%[2]s, now you're at the learning peak

[Verse 2]
Don't just memorize, make sure you understand
This knowledge right here will help you expand
Your mind, your world, how you comprehend
With %[1]s skills, there's no limit to where you can ascend
`, topic, display)
	case "country":
		return fmt.Sprintf(`[Verse 1]
Sitting here thinking 'bout %[1]s
Like a sunrise over fields of grain
The lessons learned are never forgotten
Knowledge like rain after a summer drought

[Chorus]
Oh, %[1]s
Teaching us about this world we're in
Oh, %[1]s
Where learning and living begin

[Verse 2]
Take my hand, let's walk this road together
Understanding grows like wildflowers in spring
The wisdom of %[1]s lasts forever
These are the lessons worth remembering
`, topic)
	default:
		return fmt.Sprintf(`[Verse]
Let me tell you about %[1]s
A fascinating subject to explore
The more you learn, the more you grow
Understanding what it's all for

[Chorus]
%[2]s, %[2]s
Knowledge to help you on your way
%[2]s, %[2]s
Learning something new today
`, topic, display)
	}
}

func normalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	g = strings.ReplaceAll(g, "_", " ")
	g = strings.ReplaceAll(g, "-", " ")
	return g
}
