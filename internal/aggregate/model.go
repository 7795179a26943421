package aggregate

import (
	"net/url"
	"strings"
	"time"

	"arcade/pkg/records"
)

// Field names used by the hosted record store's collections.
const (
	fieldName             = "Name"
	fieldDescription      = "Description"
	fieldThumbnail        = "Thumbnail"
	fieldAnimatedBG       = "AnimatedBackground"
	fieldPlayableURL      = "Playable URL"
	fieldPublishLink      = "ShibaLink"
	fieldOwnerIdentity    = "slack id"
	fieldHoursSpent       = "HoursSpent"
	fieldFunScore         = "AverageFunScore"
	fieldArtScore         = "AverageArtScore"
	fieldCreativityScore  = "AverageCreativityScore"
	fieldAudioScore       = "AverageAudioScore"
	fieldMoodScore        = "AverageMoodScore"
	fieldNumberComplete   = "numberComplete"
	fieldLastUpdated      = "Last Updated"
	fieldCreatedAt        = "Created At"
	fieldGameRef          = "Game"
	fieldContent          = "Content"
	fieldAttachments      = "Attachements"
	fieldAttachmentLinks  = "AttachementLinks"
	fieldPlayLink         = "PlayLink"
	fieldBadges           = "Badges"
	fieldTimelapse        = "Timelapse"
	fieldGithubAsset      = "Link to Github Asset"
	fieldTimeScreenshot   = "TimeScreenshotFile"
	fieldTimeSpentOnAsset = "TimeSpentOnAsset"
	fieldPlayerRef        = "Player"
	fieldMessage          = "message"
	fieldStarRanking      = "StarRanking"
	fieldMessageCreator   = "messageCreatorSlack"
	fieldFeedbackGame     = "gameName"
	fieldFeedbackOwner    = "gameSlackId"
	fieldSessionToken     = "token"
	fieldExperience       = "XP"
)

// Game is a listed game record.
type Game struct {
	ID                    string
	OwnerIdentity         string
	Name                  string
	Description           string
	ThumbnailURL          string
	AnimatedBackgroundURL string
	PlayableURL           string
	PublishLink           string
	LastUpdated           string
	HoursSpent            float64
	FunScore              float64
	ArtScore              float64
	CreativityScore       float64
	AudioScore            float64
	MoodScore             float64
	NumberComplete        int
}

// Usable reports whether the record carries enough identity to display.
// Games failing this are dropped from every projection.
func (g Game) Usable() bool {
	return g.Name != "" && g.OwnerIdentity != ""
}

// Post is a devlog or artlog entry attached to a game.
type Post struct {
	ID               string
	GameIDs          []string
	Content          string
	CreatedAt        string
	Created          time.Time
	Attachments      []Attachment
	PostType         string
	PlayLink         string
	TimelapseVideoID string
	GithubImageLink  string
	TimeScreenshotID string
	HoursSpent       float64
	TimeSpentOnAsset float64
	Badges           []string
}

// Attachment is a single piece of post media.
type Attachment struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Play records one playtest session of a game.
type Play struct {
	ID       string
	GameIDs  []string
	PlayerID string
	Created  time.Time
}

// Feedback is a star-rated comment left on a game. It carries no direct
// game id; it joins on the (owner identity, game name) composite.
type Feedback struct {
	ID             string
	Message        string
	StarRanking    int
	CreatedAt      string
	Created        time.Time
	PlayerIdentity string
	GameName       string
	GameOwner      string
	Badges         []string
}

// UserAccount links a store-internal user record to an external identity.
type UserAccount struct {
	ID           string
	IdentityKey  string
	SessionToken string
	Experience   int
}

func parseGame(rec records.Record) Game {
	return Game{
		ID:                    rec.ID,
		OwnerIdentity:         rec.Str(fieldOwnerIdentity),
		Name:                  rec.Str(fieldName),
		Description:           rec.Str(fieldDescription),
		ThumbnailURL:          firstAttachmentURL(rec, fieldThumbnail),
		AnimatedBackgroundURL: firstAttachmentURL(rec, fieldAnimatedBG),
		PlayableURL:           rec.Str(fieldPlayableURL),
		PublishLink:           rec.Str(fieldPublishLink),
		LastUpdated:           lastUpdated(rec),
		HoursSpent:            rec.Float(fieldHoursSpent),
		FunScore:              rec.Float(fieldFunScore),
		ArtScore:              rec.Float(fieldArtScore),
		CreativityScore:       rec.Float(fieldCreativityScore),
		AudioScore:            rec.Float(fieldAudioScore),
		MoodScore:             rec.Float(fieldMoodScore),
		NumberComplete:        int(rec.Float(fieldNumberComplete)),
	}
}

func lastUpdated(rec records.Record) string {
	if v := rec.Str(fieldLastUpdated); v != "" {
		return v
	}
	return rec.CreatedTime
}

func parsePost(rec records.Record) Post {
	timelapse := rec.Str(fieldTimelapse)
	githubAsset := rec.Str(fieldGithubAsset)
	timeSpent := rec.Float(fieldTimeSpentOnAsset)

	postType := "devlog"
	if timelapse != "" && githubAsset != "" && timeSpent != 0 {
		postType = "artlog"
	}

	return Post{
		ID:               rec.ID,
		GameIDs:          rec.StrList(fieldGameRef),
		Content:          rec.Str(fieldContent),
		CreatedAt:        createdAtRaw(rec),
		Created:          rec.CreatedAt(fieldCreatedAt),
		Attachments:      parseAttachments(rec),
		PostType:         postType,
		PlayLink:         rec.Str(fieldPlayLink),
		TimelapseVideoID: timelapse,
		GithubImageLink:  githubAsset,
		TimeScreenshotID: rec.Str(fieldTimeScreenshot),
		HoursSpent:       rec.Float(fieldHoursSpent),
		TimeSpentOnAsset: timeSpent,
		Badges:           rec.StrList(fieldBadges),
	}
}

func createdAtRaw(rec records.Record) string {
	if v := rec.Str(fieldCreatedAt); v != "" {
		return v
	}
	return rec.CreatedTime
}

func parsePlay(rec records.Record) Play {
	return Play{
		ID:       rec.ID,
		GameIDs:  rec.StrList(fieldGameRef),
		PlayerID: rec.Str(fieldPlayerRef),
		Created:  rec.CreatedAt(fieldCreatedAt),
	}
}

func parseFeedback(rec records.Record) Feedback {
	return Feedback{
		ID:             rec.ID,
		Message:        rec.Str(fieldMessage),
		StarRanking:    int(rec.Float(fieldStarRanking)),
		CreatedAt:      createdAtRaw(rec),
		Created:        rec.CreatedAt(fieldCreatedAt),
		PlayerIdentity: rec.Str(fieldMessageCreator),
		GameName:       rec.Str(fieldFeedbackGame),
		GameOwner:      rec.Str(fieldFeedbackOwner),
		Badges:         rec.StrList("messageCreatorBadges"),
	}
}

func parseUser(rec records.Record) UserAccount {
	return UserAccount{
		ID:           rec.ID,
		IdentityKey:  rec.Str(fieldOwnerIdentity),
		SessionToken: rec.Str(fieldSessionToken),
		Experience:   int(rec.Float(fieldExperience)),
	}
}

func firstAttachmentURL(rec records.Record, key string) string {
	for _, obj := range rec.ObjList(key) {
		if u, ok := obj["url"].(string); ok && u != "" {
			return u
		}
	}
	return ""
}

// parseAttachments merges the two attachment sources: structured attachment
// objects and a comma-joined list of bare URLs whose media type has to be
// inferred from the file extension.
func parseAttachments(rec records.Record) []Attachment {
	var out []Attachment

	for _, obj := range rec.ObjList(fieldAttachments) {
		u, _ := obj["url"].(string)
		if u == "" {
			continue
		}
		att := Attachment{URL: u}
		att.Type, _ = obj["type"].(string)
		att.Filename, _ = obj["filename"].(string)
		if size, ok := obj["size"].(float64); ok {
			att.Size = int64(size)
		}
		out = append(out, att)
	}

	links := rec.Str(fieldAttachmentLinks)
	for _, link := range strings.Split(links, ",") {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		out = append(out, attachmentFromLink(link))
	}

	return out
}

func attachmentFromLink(link string) Attachment {
	filename := link
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		filename = link[idx+1:]
	}

	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = strings.ToLower(filename[idx+1:])
	} else if u, err := url.Parse(link); err == nil {
		if idx := strings.LastIndex(u.Path, "."); idx >= 0 {
			ext = strings.ToLower(u.Path[idx+1:])
		}
	}

	if filename == "" || !strings.Contains(filename, ".") {
		if ext != "" {
			filename = "attachment." + ext
		} else {
			filename = "attachment"
		}
	}

	return Attachment{
		URL:      link,
		Type:     inferMediaType(ext),
		Filename: filename,
	}
}

var (
	imageExts = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "bmp": true, "svg": true}
	videoExts = map[string]bool{"mp4": true, "webm": true, "mov": true, "m4v": true, "avi": true, "mkv": true, "mpg": true, "mpeg": true}
	audioExts = map[string]bool{"mp3": true, "wav": true, "ogg": true, "m4a": true, "aac": true, "flac": true}
)

func inferMediaType(ext string) string {
	switch {
	case imageExts[ext]:
		if ext == "jpg" {
			ext = "jpeg"
		}
		return "image/" + ext
	case videoExts[ext]:
		return "video/" + ext
	case audioExts[ext]:
		return "audio/" + ext
	default:
		return "application/octet-stream"
	}
}

// DerivePlayID extracts the play identifier from a playable URL by path
// parsing: the segment following "play", or the last non-file segment.
func DerivePlayID(playableURL string) string {
	u, err := url.Parse(playableURL)
	if err != nil {
		return ""
	}

	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return ""
	}

	for i, s := range segs {
		if s == "play" && i+1 < len(segs) {
			return segs[i+1]
		}
	}

	last := segs[len(segs)-1]
	if strings.Contains(last, ".") && len(segs) > 1 {
		return segs[len(segs)-2]
	}
	if strings.Contains(last, ".") {
		return ""
	}
	return last
}
