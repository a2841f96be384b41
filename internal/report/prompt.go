package report

const promptRules = `Additional instructions:
- CRITICAL: ONLY state facts explicitly mentioned in the messages above
- NEVER infer, assume, or fabricate information not in the messages
- If something is unclear, say '확인 필요' rather than guessing
- Do NOT add background context or history that is not in the messages
- Numbers must exactly match what appears in the messages
- CRITICAL COUNTING RULES:
  * 유입 건수: 신규 신청 건수. 동일 건 중복 신청은 1건으로 카운트
  * 완료 건수: '완료' 또는 완료 이모지(✅ 등)가 명시된 건만 카운트. 해당 기간 유입 건에 한정하지 않음 (이전 주 유입 건 완료 포함)
  * 미결 건수: 단순히 '유입-완료'로 계산하지 마라. 채널에서 아직 완료 표시 안 된 진행 중인 건만 카운트
  * 예정 건수: '예정', '스케줄', 날짜가 명시된 건만 카운트. 추측하지 마라
- When citing any number, show the CRITERIA used to count, not individual items
- Keep the report compact and scannable. No unnecessary repetition
- Include specific names (venues, staff) ONLY if they appear in messages
- Provide root cause analysis based ONLY on evidence in messages
- Suggest improvements only when patterns are clearly visible in the data
- Write in Korean
- CRITICAL: Use Slack mrkdwn format, NOT standard Markdown
- Bold: *single asterisk* (NOT **double**)
- No ### or #### headers. Use *bold text* with emoji for sections
- Italic: _underscore_ (NOT *asterisk*)
- Lists: use bullet or numbered 1. 2. 3.
- Divider: use three dashes
- Example section header: *section title here*`

// SystemPrompt builds the model system prompt around the operator-supplied
// summary guide.
func SystemPrompt(guide string) string {
	return "You are a senior manager of an operations team.\n" +
		"Analyze Slack channel messages and write a report.\n\n" +
		"Follow this guide:\n\n" +
		guide + "\n\n" +
		promptRules + "\n"
}

func feedbackSection(feedbackText string) string {
	if feedbackText == "" {
		return ""
	}
	return "\n\n---ACCUMULATED TEAM FEEDBACK---\n" +
		"Below is accumulated feedback from team members across all previous reports.\n" +
		"These are PERMANENT corrections and preferences. ALWAYS apply them:\n" +
		"- If feedback says something is NOT a certain category, never categorize it that way\n" +
		"- If feedback corrects a factual error, always use the corrected version\n" +
		"- If feedback requests a format change, always apply it\n\n" +
		feedbackText + "\n" +
		"---FEEDBACK END---\n"
}

// UserPrompt builds the per-run user message: the window, the expected
// report case, accumulated feedback and the channel transcript.
func UserPrompt(typ Type, dateLabel, transcript, feedbackText string) string {
	caseInstruction := "[Case A] daily quick report format"
	if typ == TypeWeekly {
		caseInstruction = "[Case B] weekly operation report format"
	}

	return "Below are Slack messages from the operations channel for " + dateLabel + ".\n" +
		"Messages marked [reply] are thread replies.\n" +
		"Please write the report in " + caseInstruction + ".\n" +
		feedbackSection(feedbackText) + "\n" +
		"---SLACK MESSAGES START---\n" +
		transcript + "\n" +
		"---SLACK MESSAGES END---"
}
