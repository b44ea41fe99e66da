package exercise

const planPrompt = `You are an exercise planner for a study platform. Based on the request below, produce a plan of exercise blocks as JSON.

Request:
- Description: %s
- Difficulty: %s
- Number of exercises: %d
- Exercise type: %s ("qcm" = multiple choice only, "open" = open questions only, "both" = a mix of the two)

Rules:
- Plan exactly %d items.
- Each item has a "type" ("qcm" or "open") and a short "topic".
- Topics must be distinct from each other and stay within the requested subject.
- When the requested type is "both", include at least one item of each type.
- Topics are written in the language of the description.

Respond with JSON only, in this exact shape:
{"difficulty": "...", "exercises": [{"type": "qcm", "topic": "..."}]}`

const qcmPrompt = `You are an exercise writer for a study platform. Write one multiple-choice exercise block as JSON.

Topic: %s
Subject context: %s
Difficulty: %s

Rules:
- 1 to 5 questions, each with 2 to 5 answers.
- Each question has at least one correct answer. Set "multi_answers" to true only when two or more answers are correct.
- "is_selected" and "is_corrected" are always false.
- Every question has a clear "explanation" of the correct answer(s).
- Write questions, answers and explanations in the language of the subject context.

Respond with JSON only, in this exact shape:
{"type": "qcm", "topic": "%s", "questions": [{"question": "...", "answers": [{"text": "...", "is_correct": true, "is_selected": false}], "explanation": "...", "multi_answers": false, "is_corrected": false}]}`

const openPrompt = `You are an exercise writer for a study platform. Write one open-question exercise block as JSON.

Topic: %s
Subject context: %s
Difficulty: %s

Rules:
- 1 to 3 open questions.
- "answers" is the slot for the student's future answer: always the empty string.
- "is_correct" and "is_corrected" are always false.
- Every question has an "explanation" describing what a good answer contains.
- Write questions and explanations in the language of the subject context.

Respond with JSON only, in this exact shape:
{"type": "open", "topic": "%s", "questions": [{"question": "...", "answers": "", "is_correct": false, "is_corrected": false, "explanation": "..."}]}`
