package platformtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const sampleDiff = `diff --git a/main.py b/main.py
index 83db48f..bf269f4 100644
--- a/main.py
+++ b/main.py
@@ -1,4 +1,6 @@
 def total(items):
-    return sum(items)
+    result = 0
+    for i in range(len(items) + 1):
+        result += items[i]
+    return result
 
 print(total([1, 2, 3]))
`

// MergeRequests is the catalog served by /api/mr/list.
var MergeRequests = []map[string]any{
	{"id": 1, "title": "Fix pagination", "mr_type": "bugfix", "language": "python", "complexity_points": 2, "stack_tags": []string{"python", "fastapi"}},
	{"id": "mr-2", "title": "Add caching layer", "mr_type": "feature", "language": "go", "complexity_points": 5, "stack_tags": []string{"go", "redis"}},
	{"id": 3, "title": "Refactor auth", "mr_type": "refactor", "language": "python", "complexity_points": 8, "stack_tags": []string{"python"}},
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CandidateName string   `json:"candidate_name"`
		MRPackage     string   `json:"mr_package"`
		ReviewerName  string   `json:"reviewer_name"`
		MRIDs         []string `json:"mr_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(body.CandidateName) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "candidate_name is required")
		return
	}

	sess := s.Seed(Session{
		CandidateName: body.CandidateName,
		MRPackage:     body.MRPackage,
		ReviewerName:  body.ReviewerName,
		MRIDs:         body.MRIDs,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     sess.ID,
		"access_token":   sess.AccessToken,
		"reviewer_token": fmt.Sprintf("rev-%d", sess.ID),
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	out := []map[string]any{}
	for id := int64(1); id <= s.nextID.Load(); id++ {
		if sess, ok := s.sessions.Get(id); ok {
			out = append(out, s.wire(sess))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.wire(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	already := false
	s.withSession(sess.ID, func(sess *Session) {
		if sess.DeletedAt != nil {
			already = true
			return
		}
		now := s.Now().UTC()
		sess.DeletedAt = &now
	})
	if already {
		writeDetail(w, http.StatusBadRequest, "Session already deleted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	now := s.Now().UTC()
	s.withSession(sess.ID, func(sess *Session) {
		sess.Status = "finished"
		sess.ExpiresAt = now
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished", "finished_at": naive(now)})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		MRIDs []string `json:"mr_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.withSession(sess.ID, func(sess *Session) { sess.MRIDs = body.MRIDs })
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "mr_ids": body.MRIDs})
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = io.WriteString(w, "%PDF-1.4\n")
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var expires time.Time
	s.withSession(sess.ID, func(sess *Session) {
		now := s.Now().UTC()
		base := sess.ExpiresAt
		if base.Before(now) {
			base = now
		}
		sess.ExpiresAt = base.Add(s.ExtendBy)
		expires = sess.ExpiresAt
	})

	resp := map[string]string{"status": "extended"}
	if !s.omitExtendExpiry.Load() {
		resp["expires_at"] = naive(expires)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request, sess *Session, candidate bool) {
	var c Comment
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	locked := false
	s.withSession(sess.ID, func(sess *Session) {
		if candidate && sess.CandidateReadyAt != nil {
			locked = true
			return
		}
		sess.Comments = append(sess.Comments, c)
	})
	if locked {
		writeDetail(w, http.StatusBadRequest, "Candidate already marked ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReviewerComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.addComment(w, r, sess, false)
}

func (s *Server) handleCandidateComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	s.addComment(w, r, sess, true)
}

func (s *Server) handleCandidateGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	out := s.wire(sess)
	out["session_id"] = sess.ID
	delete(out, "id")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCandidateDiff(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, sess.Diff)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupToken(w, r)
	if !ok {
		return
	}

	status := "ready"
	var at time.Time
	s.withSession(sess.ID, func(sess *Session) {
		if sess.CandidateReadyAt != nil {
			status = "already_ready"
			at = *sess.CandidateReadyAt
			return
		}
		at = s.Now().UTC()
		sess.CandidateReadyAt = &at
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": status, "ready_at": naive(at)})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	jobID := fmt.Sprintf("job-%d-%d", sess.ID, s.jobs.Len()+1)
	s.jobs.Set(jobID, &job{sessionID: sess.ID})
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var status string
	_, ok := s.jobs.Update(jobID, func(j *job, ok bool) (*job, bool) {
		if !ok {
			return nil, false
		}
		idx := min(j.step, len(s.JobSteps)-1)
		status = s.JobSteps[idx]
		j.step++
		return j, true
	})
	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}

	if status == "finished" {
		j, _ := s.jobs.Get(jobID)
		s.withSession(j.sessionID, func(sess *Session) {
			if sess.Report == "" {
				sess.Report = fmt.Sprintf("# Review report\n\nCandidate: %s\nComments: %d\n", sess.CandidateName, len(sess.Comments))
			}
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "status": status})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	idPart, kind, ok := strings.Cut(name, "_")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if !ok || err != nil {
		writeDetail(w, http.StatusNotFound, "Artifact not found")
		return
	}
	sess, found := s.Session(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Artifact not found")
		return
	}

	var body string
	switch kind {
	case "diff.patch":
		body = sess.Diff
	case "report.txt":
		body = sess.Report
	}
	if body == "" {
		writeDetail(w, http.StatusNotFound, "Artifact not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.HasSuffix(header.Filename, ".zip") {
		writeDetail(w, http.StatusBadRequest, "Only .zip archives are accepted")
		return
	}

	sess := s.Seed(Session{CandidateName: "anonymous", MRPackage: strings.TrimSuffix(header.Filename, ".zip")})
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sess.ID, "access_token": sess.AccessToken})
}

func (s *Server) handleCreatePR(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	url := fmt.Sprintf("%s/gitea/review/session-%d/pulls/1", s.URL, sess.ID)
	s.withSession(sess.ID, func(sess *Session) { sess.PRURL = url })
	writeJSON(w, http.StatusOK, map[string]any{"status": "created", "pr_id": 1, "pr_url": url})
}

func (s *Server) handleGetPR(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	snap, _ := s.Session(sess.ID)
	if snap.PRURL == "" {
		writeDetail(w, http.StatusNotFound, "Pull request not created")
		return
	}

	comments := make([]map[string]any, 0, len(snap.PRComments))
	for i, c := range snap.PRComments {
		start, _, _ := strings.Cut(c.LineRange, "-")
		line, _ := strconv.Atoi(start)
		comments = append(comments, map[string]any{
			"id":   i + 1,
			"user": map[string]string{"login": "candidate"},
			"body": c.Text,
			"path": c.File,
			"line": line,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pr": map[string]any{
			"number":   1,
			"title":    "Review: " + snap.CandidateName,
			"state":    "open",
			"html_url": snap.PRURL,
		},
		"comments":       comments,
		"issue_comments": []any{},
		"diff":           snap.Diff,
		"pr_url":         snap.PRURL,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	pull := strings.HasSuffix(r.URL.Path, "from-gitea")
	var synced, total int
	s.withSession(sess.ID, func(sess *Session) {
		if pull {
			total = len(sess.PRComments)
			sess.Comments = append(sess.Comments, sess.PRComments...)
			synced = total
			return
		}
		total = len(sess.Comments)
		sess.PRComments = append([]Comment(nil), sess.Comments...)
		synced = total
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "synced",
		"synced_count": synced,
		"total_count":  total,
		"errors":       []string{},
	})
}

func (s *Server) handleMRList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPts, _ := strconv.Atoi(q.Get("min_complexity_points"))
	maxPts, _ := strconv.Atoi(q.Get("max_complexity_points"))

	out := []map[string]any{}
	for _, mr := range MergeRequests {
		pts := mr["complexity_points"].(int)
		if t := q.Get("mr_type"); t != "" && mr["mr_type"] != t {
			continue
		}
		if minPts > 0 && pts < minPts {
			continue
		}
		if maxPts > 0 && pts > maxPts {
			continue
		}
		if tag := q.Get("stack_tag"); tag != "" && !hasTag(mr, tag) {
			continue
		}
		out = append(out, mr)
	}
	writeJSON(w, http.StatusOK, map[string]any{"merge_requests": out, "total": len(out)})
}

func (s *Server) handleMRRecommend(w http.ResponseWriter, r *http.Request) {
	grade := r.URL.Query().Get("target_grade")
	limit := map[string]int{"junior": 4, "middle": 6, "senior": 100}[grade]
	if limit == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "unknown target_grade")
		return
	}

	out := []map[string]any{}
	for _, mr := range MergeRequests {
		if mr["complexity_points"].(int) <= limit {
			out = append(out, mr)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommended_mrs": out})
}

func hasTag(mr map[string]any, tag string) bool {
	for _, t := range mr["stack_tags"].([]string) {
		if t == tag {
			return true
		}
	}
	return false
}
