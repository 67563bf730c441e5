package mysql

const selectApprovedSQL = `SELECT review_id FROM review_approvals`

// Re-approving keeps the original approved_at.
const insertApprovalSQL = `
INSERT INTO review_approvals (review_id)
VALUES (?)
ON DUPLICATE KEY UPDATE review_id = review_id
`

const deleteApprovalSQL = `DELETE FROM review_approvals WHERE review_id = ?`
