package bot

import "jobbot/core/telegram/state"

// Conversation states. One flow per user at a time; every state names
// the input the next text message is expected to carry.
const (
	stateRegNickname    state.State = "reg_nickname"
	stateRegCitizenship state.State = "reg_citizenship"
	stateRegBank        state.State = "reg_bank"

	stateCreateDescription state.State = "create_description"
	stateCreatePriority    state.State = "create_priority"
	stateCreateCategory    state.State = "create_category"
	stateCreateSalary      state.State = "create_salary"

	stateAwaitCoords state.State = "await_coords"
	stateEditBank    state.State = "edit_bank"
)

// Temp data keys used while a flow is in progress.
const (
	tempNickname    = "nickname"
	tempCitizenship = "citizenship"
	tempDescription = "description"
	tempPriority    = "priority"
	tempCategory    = "category"
	tempJobID       = "job_id"
)
