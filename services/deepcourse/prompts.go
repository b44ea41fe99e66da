package deepcourse

const newChapterPrompt = `You are extending an existing deep course on a study platform. Produce the plan of ONE new chapter as JSON.

Deep course title: %s
Existing chapters:
%s

User request for the new chapter: %s

Rules:
- The new chapter must not duplicate or overlap an existing chapter topic.
- Keep the difficulty and language consistent with the deep course title and the user request.
- "synthesis_exercise" plans the practice exercises of the chapter (1 to 20 exercises, type "qcm", "open" or "both").
- "synthesis_course" plans the chapter course ("level_detail" is "flash", "standard" or "detailed").
- "synthesis_evaluation" plans the final evaluation: always 10 exercises of type "both".

Respond with JSON only, in this exact shape:
{"chapter_title": "...", "chapter_description": "...",
 "synthesis_exercise": {"description": "...", "title": "...", "difficulty": "...", "number_of_exercises": 5, "exercise_type": "both"},
 "synthesis_course": {"description": "...", "difficulty": "...", "level_detail": "standard"},
 "synthesis_evaluation": {"description": "...", "title": "...", "difficulty": "...", "number_of_exercises": 10, "exercise_type": "both"}}`
