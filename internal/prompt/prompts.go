package prompt

// OutputDiscipline closes every system instruction so the generator emits only the post body.
const OutputDiscipline = "只输出帖子内容本身，不要有其他说明。"

// UserSuffix closes every user instruction: one self-contained post with title, body and tags.
const UserSuffix = "只输出帖子内容，包括标题、正文和话题标签。不要有其他解释。"
