package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
)

// videoSortColumns whitelists the sortable columns of the listing endpoint.
// Anything else falls back to the creation-time default.
var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"duration":  "v.duration",
}

const videoListSelect = `
	SELECT v.id, v.title, v.duration, v.video_url, v.thumbnail_url, v.created_at,
	       u.id, u.username, u.full_name, u.avatar_url
	FROM videos v
	JOIN users u ON u.id = v.owner_id`

// buildVideoListQuery assembles the listing query: owner/free-text filter,
// publication visibility, owner join, whitelisted sort and pagination. It
// returns the SQL text and its positional arguments.
func buildVideoListQuery(params domain.VideoListParams, viewerID uuid.UUID) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(videoListSelect)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// Unpublished videos are visible to their owner only.
	where := []string{
		fmt.Sprintf("(v.is_published OR v.owner_id = %s)", arg(viewerID)),
	}

	var filters []string
	if params.OwnerID != nil {
		filters = append(filters, fmt.Sprintf("v.owner_id = %s", arg(*params.OwnerID)))
	}
	if params.Query != "" {
		pattern := arg("%" + escapeLike(params.Query) + "%")
		filters = append(filters, fmt.Sprintf("(v.title ILIKE %s OR v.description ILIKE %s)", pattern, pattern))
	}
	if len(filters) > 0 {
		where = append(where, "("+strings.Join(filters, " OR ")+")")
	}

	sb.WriteString("\n\tWHERE ")
	sb.WriteString(strings.Join(where, " AND "))

	column, ok := videoSortColumns[params.SortBy]
	if !ok {
		column = videoSortColumns["createdAt"]
	}
	direction := "ASC"
	if strings.EqualFold(params.SortType, "desc") {
		direction = "DESC"
	}
	sb.WriteString(fmt.Sprintf("\n\tORDER BY %s %s", column, direction))

	offset := (params.Page - 1) * params.Limit
	sb.WriteString(fmt.Sprintf("\n\tLIMIT %s OFFSET %s", arg(params.Limit), arg(offset)))

	return sb.String(), args
}

// escapeLike escapes the ILIKE wildcard characters in user input so a query
// term matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
